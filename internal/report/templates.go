package report

// htmlTemplate renders the sweep overview page.
const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}} - Arrival-Rate Sweep Report</title>
    <script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
    <style>
        :root {
            --bg-primary: #ffffff;
            --bg-secondary: #f8fafc;
            --bg-card: #ffffff;
            --text-primary: #1e293b;
            --text-secondary: #64748b;
            --text-muted: #94a3b8;
            --border-color: #e2e8f0;
            --accent-primary: #3b82f6;
            --accent-warning: #f59e0b;
            --shadow: 0 1px 3px rgba(0, 0, 0, 0.1);
        }

        [data-theme="dark"] {
            --bg-primary: #0f172a;
            --bg-secondary: #1e293b;
            --bg-card: #1e293b;
            --text-primary: #f1f5f9;
            --text-secondary: #94a3b8;
            --text-muted: #64748b;
            --border-color: #334155;
            --shadow: 0 1px 3px rgba(0, 0, 0, 0.3);
        }

        * { margin: 0; padding: 0; box-sizing: border-box; }

        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            background-color: var(--bg-secondary);
            color: var(--text-primary);
            line-height: 1.6;
        }

        .container { max-width: 1400px; margin: 0 auto; padding: 2rem; }

        .header, .section {
            background: var(--bg-card);
            border-radius: 12px;
            padding: 2rem;
            margin-bottom: 2rem;
            box-shadow: var(--shadow);
        }

        .header { display: flex; justify-content: space-between; align-items: center; }
        .header h1 { font-size: 1.75rem; font-weight: 700; }
        .header .meta { color: var(--text-muted); font-size: 0.875rem; }

        .theme-toggle {
            background: var(--bg-secondary);
            border: 1px solid var(--border-color);
            border-radius: 8px;
            padding: 0.5rem;
            cursor: pointer;
            color: var(--text-secondary);
            font-size: 1.25rem;
        }

        .section h2 { font-size: 1.25rem; margin-bottom: 1rem; }
        .chart-wrapper { position: relative; height: 320px; }

        table { width: 100%; border-collapse: collapse; font-size: 0.9rem; }
        th, td { text-align: left; padding: 0.75rem; border-bottom: 1px solid var(--border-color); vertical-align: top; }
        th { color: var(--text-secondary); font-weight: 600; }

        pre {
            background: var(--bg-secondary);
            border-radius: 8px;
            padding: 1rem;
            overflow-x: auto;
            font-size: 0.8rem;
        }

        .warning { color: var(--accent-warning); }
        .footer { text-align: center; color: var(--text-muted); font-size: 0.8rem; }
    </style>
</head>
<body>
    <div class="container">
        <header class="header">
            <div>
                <h1>{{.Title}}</h1>
                <div class="meta">{{len .Rows}} reports in {{.Dir}}</div>
            </div>
            <button class="theme-toggle" onclick="toggleTheme()">◐</button>
        </header>

        {{if .Rows}}
        <section class="section">
            <h2>Run Duration by Arrival Rate</h2>
            <div class="chart-wrapper">
                <canvas id="durationChart"></canvas>
            </div>
        </section>

        <section class="section">
            <h2>Reports</h2>
            <table>
                <thead>
                    <tr><th>Arrival Rate</th><th>Duration</th><th>Stderr</th><th>Report</th></tr>
                </thead>
                <tbody>
                    {{range .Rows}}
                    <tr>
                        <td>{{.ArrivalRate}}/s</td>
                        <td>{{formatSeconds .Duration}}</td>
                        <td>{{formatBytes .StderrBytes}}</td>
                        <td>{{.Path}}</td>
                    </tr>
                    {{end}}
                </tbody>
            </table>
        </section>

        {{range .Rows}}
        <section class="section" id="rate-{{.ArrivalRate}}">
            <h2>Summary for arrival rate {{.ArrivalRate}}</h2>
            {{if .Found}}<pre>{{.Excerpt}}</pre>{{else}}<p class="warning">No summary block in the captured output.</p>{{end}}
        </section>
        {{end}}
        {{end}}

        {{if .Problems}}
        <section class="section">
            <h2>Skipped Files</h2>
            <ul>{{range .Problems}}<li class="warning">{{.}}</li>{{end}}</ul>
        </section>
        {{end}}

        <footer class="footer">
            <p>Generated by ratesweep • {{.Generated.Format "2006-01-02 15:04:05 MST"}}</p>
        </footer>
    </div>

    <script>
        function toggleTheme() {
            const html = document.documentElement;
            const next = html.getAttribute('data-theme') === 'dark' ? 'light' : 'dark';
            html.setAttribute('data-theme', next);
            localStorage.setItem('theme', next);
        }
        document.documentElement.setAttribute('data-theme', localStorage.getItem('theme') || 'light');

        const chartData = {{.ChartJSON}};
        const canvas = document.getElementById('durationChart');
        if (canvas && window.Chart) {
            new Chart(canvas, {
                type: 'bar',
                data: {
                    labels: chartData.map(d => d.rate + '/s'),
                    datasets: [{
                        label: 'Duration (s)',
                        data: chartData.map(d => d.duration),
                        backgroundColor: '#3b82f6',
                    }],
                },
                options: { responsive: true, maintainAspectRatio: false },
            });
        }
    </script>
</body>
</html>
`
