package server

import (
	"html/template"
	"time"
)

var templateFuncs = template.FuncMap{
	"when": func(t time.Time) string {
		return t.Local().Format("2006-01-02 15:04:05")
	},
}

const pages = `
{{define "head"}}<!DOCTYPE html>
<html>
<head>
    <title>{{.}}</title>
    <style>
        body { font-family: monospace, sans-serif; max-width: 800px; margin: 0 auto; padding: 20px; }
        h1, h2 { color: #333; }
        a { text-decoration: none; color: #0066cc; }
        a:hover { text-decoration: underline; }
        label { display: block; margin-top: 8px; }
        input { width: 100%; padding: 4px; }
        table { width: 100%; border-collapse: collapse; margin-top: 10px; }
        th, td { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
        .notice { background: #fff8e1; padding: 10px; border-radius: 5px; }
        .error { background: #fdecea; padding: 10px; border-radius: 5px; }
        .created { background: #e8f5e9; padding: 10px; border-radius: 5px; }
        .expired { color: #999; }
        .stats { display: flex; gap: 20px; }
        .stat-box { flex: 1; padding: 15px; background: #f5f5f5; border-radius: 5px; text-align: center; }
        .stat-number { font-size: 24px; font-weight: bold; margin: 10px 0; }
    </style>
</head>
<body>
{{end}}

{{define "foot"}}
</body>
</html>{{end}}

{{define "register"}}{{template "head" "Shorty - Register"}}
    <h1>Register</h1>
    {{if .Notice}}<p class="notice">{{.Notice}}</p>{{end}}
    {{if .Error}}<p class="error">{{.Error}}</p>{{end}}
    <form method="post" action="/register">
        <label>Name <input name="name" value="{{.Form.Name}}" required></label>
        <label>Email <input name="email" type="email" value="{{.Form.Email}}" required></label>
        <label>Roll number <input name="rollNo" value="{{.Form.RollNo}}" required></label>
        <label>Mobile number <input name="mobileNo" value="{{.Form.MobileNo}}" required></label>
        <label>GitHub username <input name="githubUsername" value="{{.Form.GithubUsername}}" required></label>
        <label>Access code <input name="accessCode" value="{{.Form.AccessCode}}" required></label>
        <p><button type="submit">Register</button></p>
    </form>
{{template "foot"}}{{end}}

{{define "dashboard"}}{{template "head" "Shorty"}}
    <h1>Shorty</h1>
    <p>Registered as {{.Session.Name}} ({{.Session.Email}})</p>
    <form method="post" action="/logout"><button type="submit">Reset registration</button></form>
    {{if .Notice}}<p class="notice">{{.Notice}}</p>{{end}}
    {{if .Error}}<p class="error">{{.Error}}</p>{{end}}
    {{if .Created}}<p class="created">Created <a href="{{.Created}}">{{.Created}}</a></p>{{end}}

    <h2>Shorten a URL</h2>
    <form method="post" action="/links">
        <label>Long URL <input name="longUrl" value="{{.Form.LongURL}}" required></label>
        <label>Custom shortcode (optional) <input name="shortcode" value="{{.Form.Shortcode}}"></label>
        <label>Validity in minutes <input name="validity" value="{{.Form.Validity}}" placeholder="30"></label>
        <p><button type="submit">Shorten</button></p>
    </form>

    <h2>Analytics</h2>
    {{if .Links}}
    <table>
        <tr><th>Short link</th><th>Destination</th><th>Clicks</th><th>Expires</th></tr>
        {{range .Links}}
        <tr{{if .Expired}} class="expired"{{end}}>
            <td><a href="{{.ShortURL}}">{{.Shortcode}}</a></td>
            <td><a href="{{.LongURL}}">{{.LongURL}}</a></td>
            <td>{{.Clicks}}</td>
            <td>{{when .ExpiresAt}}{{if .Expired}} (expired){{end}}</td>
        </tr>
        {{end}}
    </table>
    {{else}}
    <p>No links yet.</p>
    {{end}}
    <p><a href="/info">Service info</a></p>
{{template "foot"}}{{end}}

{{define "info"}}{{template "head" "Shorty - Info"}}
    <h1>Shorty - Info</h1>
    <div class="stats">
        <div class="stat-box"><div>Total Links</div><div class="stat-number">{{.TotalLinks}}</div></div>
        <div class="stat-box"><div>Active</div><div class="stat-number">{{.ActiveLinks}}</div></div>
        <div class="stat-box"><div>Expired</div><div class="stat-number">{{.Expired}}</div></div>
        <div class="stat-box"><div>Clicks</div><div class="stat-number">{{.TotalClicks}}</div></div>
    </div>
    <h2>Service Information</h2>
    <ul>
        <li>Base URL: {{.BaseURL}}</li>
        <li>Storage: {{.Storage}}</li>
    </ul>
    <p><a href="/">Back to home</a></p>
{{template "foot"}}{{end}}
`
