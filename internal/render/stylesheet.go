package render

// Stylesheet is embedded in every rendered page.
const Stylesheet = `
        body {
            max-width: 800px;
            margin: 40px auto;
            padding: 0 20px;
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
            line-height: 1.6;
            color: #333;
        }
        h1, h2, h3, h4 { margin-top: 2em; }
        h3 a { text-decoration: none; }
        h3 a:hover { text-decoration: underline; }
        p { margin: 0.5em 0; }
        code {
            background: #f4f4f4;
            padding: 2px 4px;
            border-radius: 3px;
            font-family: Consolas, Monaco, monospace;
        }
        pre {
            background: #f4f4f4;
            padding: 1em;
            border-radius: 5px;
            overflow-x: auto;
        }
        pre code { background: none; padding: 0; }
        a { color: #0066cc; }
        table { border-collapse: collapse; margin: 1em 0; }
        th, td { border: 1px solid #ddd; padding: 0.3em 0.6em; }
        .download-box {
            background: #e8f4f8;
            padding: 1em;
            border-radius: 5px;
            margin: 1em 0;
        }
        ul {
            list-style-type: disc;
            padding-left: 2em;
            margin: 0.5em 0;
        }
        li { margin: 0.3em 0; }
        .section-header {
            margin-top: 2em;
            margin-bottom: 1em;
            padding-bottom: 0.5em;
            border-bottom: 2px solid #eee;
        }
        .resource-buttons {
            margin: 1em 0;
            display: flex;
            flex-wrap: wrap;
            gap: 0.5em;
        }
        .resource-button {
            display: inline-block;
            padding: 0.4em 0.8em;
            background: #f0f0f0;
            border: 1px solid #ddd;
            border-radius: 4px;
            text-decoration: none;
            color: #333;
            font-size: 0.9em;
            transition: all 0.2s;
        }
        .resource-button:hover { background: #e0e0e0; border-color: #ccc; }
        .resource-button.primary {
            background: #e3f2fd;
            color: #1565c0;
            border-color: #90caf9;
        }
        .resource-button.primary:hover { background: #bbdefb; border-color: #64b5f6; }
        .resource-button.completed {
            background: #e8f5e9;
            color: #2e7d32;
            border-color: #a5d6a7;
        }
        .resource-button.completed:hover { background: #c8e6c9; border-color: #81c784; }
        .data-download { margin: 0.5em 0; font-size: 0.9em; }
        .download-links { margin: 0.5em 0; line-height: 1.8; }
        .download-links a { color: #1976d2; text-decoration: none; }
        .download-links a:hover { text-decoration: underline; }
`
