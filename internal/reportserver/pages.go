package reportserver

const indexHTML = `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Flowtap Run History</title>
  </head>
  <body>
    <h1>Run History</h1>
    <table border="1" cellpadding="4">
      <tr><th>Run</th><th>Workflow</th><th>Status</th><th>Started</th><th>Finished</th></tr>
      {{range .Runs}}
      <tr>
        <td><a href="/runs/{{.RunID}}">{{.RunID}}</a></td>
        <td>{{.WorkflowID}}</td>
        <td>{{.Status}}{{if .Err}} ({{.Err}}){{end}}</td>
        <td>{{.StartedAt.Format "2006-01-02 15:04:05"}}</td>
        <td>{{if .FinishedAt.IsZero}}&ndash;{{else}}{{.FinishedAt.Format "2006-01-02 15:04:05"}}{{end}}</td>
      </tr>
      {{end}}
    </table>
    <h2>Workflows</h2>
    <ul>
      {{range .Workflows}}
      <li>{{.Name}} ({{.ID}}){{if .Description}}: {{.Description}}{{end}}</li>
      {{end}}
    </ul>
  </body>
</html>`

const runHTML = `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Run {{.Snapshot.RunID}}</title>
  </head>
  <body>
    <h1>Run {{.Snapshot.RunID}}</h1>
    <p>Status: {{.Snapshot.Status}}{{if .Snapshot.Err}} ({{.Snapshot.Err}}){{end}}</p>
    {{range .Snapshot.Blocks}}
    <h2>Node {{.StepID}} ({{.Status}})</h2>
    {{if .Err}}<p>Error: {{.Err}}</p>{{end}}
    {{$block := .}}
    {{range .ChannelOrder}}
    <h3>{{.}}</h3>
    <pre>{{joinText (index $block.Channels .).Committed}}{{(index $block.Channels .).Live}}</pre>
    {{end}}
    {{end}}
    <p><a href="/">Back to run history</a></p>
  </body>
</html>`
