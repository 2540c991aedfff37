package phase

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// Dump writes the phase list as a JSON array, for diagnostics
func (l List) Dump(writer *jwriter.Writer) {
	arr := writer.Array()
	defer arr.End()

	for _, p := range l {
		obj := arr.Object()
		obj.Name("Index").Int(p.Index)
		obj.Name("Mode").String(p.Mode.String())
		obj.Name("Pipe").Int(p.Pipe)
		if p.Mode == WorkModeBackEnd {
			obj.Name("Ordinal").Int(p.Ordinal)
		}
		obj.Name("IsFirst").Bool(p.IsFirst)
		obj.Name("IsLast").Bool(p.IsLast)

		if len(p.Columns) > 0 {
			columns := obj.Name("Columns").Array()
			for _, span := range p.Columns {
				spanObj := columns.Object()
				spanObj.Name("Start").Int(span.Start)
				spanObj.Name("Count").Int(span.Count)
				spanObj.End()
			}
			columns.End()
		}

		if !p.Budget.IsZero() {
			budget := obj.Name("Budget").Object()
			budget.Name("Bytes").Int(p.Budget.Bytes)
			budget.Name("References").Int(p.Budget.References)
			budget.End()
		}
		obj.End()
	}
}

// String returns the JSON produced by Dump
func (l List) String() string {
	writer := jwriter.NewWriter()
	l.Dump(&writer)
	return string(writer.Bytes())
}
