// internal/nlquery/prompt.go
package nlquery

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/smartquery/text2sql-backend/internal/schema"
)

// ErrTemplateMissing marks a missing prompt template file. Templates load
// once at startup; their absence is a configuration failure.
var ErrTemplateMissing = errors.New("prompt template missing")

// sqlOnlySuffix pins the model to bare SQL output. Mirrors the fixed
// instruction the connected models respond to best.
const sqlOnlySuffix = "（请只给出SQL语句，不要说其他多余的话，不要使用markdown代码块，例如：SELECT * FROM 商品信息表）"

// LoadTemplate reads one instruction template from disk.
func LoadTemplate(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrTemplateMissing, path, err)
	}
	tmpl := strings.TrimSpace(string(raw))
	if tmpl == "" {
		return "", fmt.Errorf("%w: %s: template is empty", ErrTemplateMissing, path)
	}
	return tmpl, nil
}

// ComposeQuery builds the SQL-generation prompt: instruction template, the
// caller's sentence, the schema description, and the SQL-only suffix. Pure
// function of its inputs.
func ComposeQuery(tmpl string, catalog *schema.Catalog, sentence string) string {
	var b strings.Builder
	b.WriteString(tmpl)
	b.WriteString("\n")
	b.WriteString(sentence)
	b.WriteString("\n数据库表结构：")
	b.WriteString(catalog.Describe())
	b.WriteString("\n")
	b.WriteString(sqlOnlySuffix)
	return b.String()
}

// ComposeSuggestion builds the fallback prompt used when generation,
// validation or execution failed: suggestion template, sentence and schema,
// without the SQL-only suffix since free text is the point.
func ComposeSuggestion(tmpl string, catalog *schema.Catalog, sentence string) string {
	var b strings.Builder
	b.WriteString(tmpl)
	b.WriteString("\n")
	b.WriteString(sentence)
	b.WriteString("\n数据库表结构：")
	b.WriteString(catalog.Describe())
	return b.String()
}
