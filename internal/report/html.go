package report

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/trendradar/trendradar/internal/analyzer"
	"github.com/trendradar/trendradar/internal/crawler"
)

const htmlReport = `<!DOCTYPE html>
<html lang="zh-CN">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>TrendRadar {{.Time}}</title>
<style>
body { font-family: -apple-system, "PingFang SC", "Microsoft YaHei", sans-serif; margin: 2em auto; max-width: 860px; padding: 0 1em; color: #222; }
h1 { font-size: 1.4em; }
h2 { font-size: 1.1em; border-bottom: 1px solid #ddd; padding-bottom: .3em; }
.meta { color: #666; font-size: .9em; }
.topic { background: #f7f7f9; border-radius: 6px; padding: .6em 1em; margin: .6em 0; }
.topic .count { color: #c0392b; font-weight: bold; }
ol li { margin: .25em 0; }
.extra { color: #999; font-size: .85em; margin-left: .5em; }
.failed { color: #c0392b; }
a { color: #1a6fb5; text-decoration: none; }
</style>
</head>
<body>
<h1>TrendRadar {{.Time}}</h1>
<p class="meta">{{len .Batch.Platforms}} platforms, {{.Batch.TotalItems}} items{{if .Batch.Failed}}, <span class="failed">failed: {{range $i, $f := .Batch.Failed}}{{if $i}}, {{end}}{{$f}}{{end}}</span>{{end}}</p>

{{if .Topics}}
<h2>Trending topics</h2>
{{range .Topics}}
<div class="topic">
<strong>{{.Label}}</strong> <span class="count">{{.Count}}</span>
<ul>
{{range .Items}}<li>[{{.Platform}} #{{.Rank}}] {{if .URL}}<a href="{{.URL}}">{{.Title}}</a>{{else}}{{.Title}}{{end}}</li>
{{end}}</ul>
</div>
{{end}}
{{end}}

{{range .Batch.Platforms}}
<h2>{{.Name}}</h2>
{{if .Error}}<p class="failed">fetch failed: {{.Error}}</p>{{else}}
<ol>
{{range .Items}}<li>{{if .URL}}<a href="{{.URL}}">{{.Title}}</a>{{else}}{{.Title}}{{end}}{{if .Extra}}<span class="extra">{{.Extra}}</span>{{end}}</li>
{{end}}</ol>
{{end}}
{{end}}
</body>
</html>
`

var htmlTmpl = template.Must(template.New("report").Parse(htmlReport))

// HTML renders the browsable report page.
func (r *Renderer) HTML(batch *crawler.Batch, topics []analyzer.Topic) ([]byte, error) {
	data := struct {
		Time   string
		Batch  *crawler.Batch
		Topics []analyzer.Topic
	}{
		Time:   batch.CrawledAt.In(r.location).Format("2006-01-02 15:04"),
		Batch:  batch,
		Topics: topics,
	}

	var buf bytes.Buffer
	if err := htmlTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render html report: %w", err)
	}
	return buf.Bytes(), nil
}
