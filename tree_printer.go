package tomo

import "strings"

// FormatFunc colors (or doesn't) a chunk of text tagged with T before
// it's written to a treePrinter's buffer.
type FormatFunc[T any] func(input string, token T) string

// treePrinter is shared indentation-tracking machinery for rendering
// a tree structure as ASCII art, used by the AST pretty-printer.
type treePrinter[T any] struct {
	padStr []string
	output strings.Builder
	format FormatFunc[T]
}

func newTreePrinter[T any](format FormatFunc[T]) *treePrinter[T] {
	return &treePrinter[T]{format: format}
}

func (tp *treePrinter[T]) indent(s string)  { tp.padStr = append(tp.padStr, s) }
func (tp *treePrinter[T]) unindent()        { tp.padStr = tp.padStr[:len(tp.padStr)-1] }
func (tp *treePrinter[T]) write(s string)   { tp.output.WriteString(s) }
func (tp *treePrinter[T]) writel(s string)  { tp.write(s); tp.output.WriteByte('\n') }
func (tp *treePrinter[T]) pwritel(s string) { tp.pwrite(s); tp.output.WriteByte('\n') }

func (tp *treePrinter[T]) padding() {
	for _, s := range tp.padStr {
		tp.write(s)
	}
}

func (tp *treePrinter[T]) pwrite(s string) {
	tp.padding()
	tp.write(s)
}

var literalSanitizer = strings.NewReplacer(
	`"`, `\"`,
	`\`, `\\`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func escapeLiteral(s string) string {
	return literalSanitizer.Replace(s)
}
