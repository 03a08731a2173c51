package server

// Server-rendered profile tab. Messages are stored pre-sanitized, so the
// template prints them as regular escaped text.
const complimentsTemplate = `<!DOCTYPE html>
<html>
<head><title>Compliments · {{.DisplayedName}}</title></head>
<body>
<div class="bp-compliments-wrap">
{{if .Rows}}
    <div class="comp-user-content">
        <ul class="comp-user-ul">
        {{range .Rows}}
            <li>
                <div class="comp-user-header">
                    <span><img class="comp-term-icon" src="{{.TermIcon}}" alt=""/> {{.TermName}}</span>
                    <em>{{.Date}}</em>
                </div>
                <div class="comp-user-msg-wrap">
                    <div class="comp-user-message">
                        <div class="comp-username">
                            <a href="{{.SenderURL}}" class="url">{{.SenderName}}</a>
                        </div>
                        {{.Message}}
                    </div>
                </div>
            </li>
        {{end}}
        </ul>
    </div>
    {{if .ShowPagination}}
    <div id="pag-top" class="pagination">
        <div class="pag-count">{{.Summary}}</div>
        <div class="pagination-links">
            <span class="comp-pagination-text">Go to Page</span>
            {{range .Pages}}{{if eq . $.CurrentPage}}<span class="current">{{.}}</span>{{else}}<a href="?cpage={{.}}">{{.}}</a>{{end}} {{end}}
        </div>
    </div>
    {{end}}
{{else}}
    <div id="message" class="bp-no-compliments info">
        <p>{{.EmptyMessage}}</p>
    </div>
{{end}}
</div>
</body>
</html>
`
