package inputfile

import (
	_ "embed"
	"io"
	"text/template"
)

//go:embed submit.sh.tmpl
var submitTemplateText string

var submitTemplate = template.Must(template.New("submit").
	Funcs(template.FuncMap{"quote": shellQuote}).
	Parse(submitTemplateText))

// SubmitScript describes the bash script that launches one calculation.
type SubmitScript struct {
	Exec        string
	Args        []string
	WithMPI     bool
	Procs       int
	PrependText string
	AppendText  string
}

// WriteSubmitScript renders s.
func WriteSubmitScript(w io.Writer, s SubmitScript) error {
	return submitTemplate.Execute(w, s)
}
