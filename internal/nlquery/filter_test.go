package nlquery

import (
	"errors"
	"testing"

	"github.com/smartquery/text2sql-backend/internal/schema"
)

func testCatalog() *schema.Catalog {
	return schema.NewCatalog([]schema.Table{
		{Table: "商品信息表", Columns: []string{"商品名", "单位价格", "商品种类"}},
		{Table: "顾客信息表", Columns: []string{"姓名", "电话"}},
	})
}

func TestFilterValidate(t *testing.T) {
	testCases := []struct {
		name       string
		sql        string
		wantReason string // empty means accepted
		wantKw     string
		comment    string
	}{
		{"plain select", "SELECT * FROM 商品信息表", "", "", ""},
		{"lowercase select", "select 商品名 from 商品信息表", "", "", ""},
		{"leading whitespace", "   \n\tSELECT 1", "", "", ""},
		{"leading line comment", "-- generated\nSELECT * FROM 顾客信息表", "", "", ""},
		{"leading block comment", "/* 查询 */ SELECT * FROM 商品信息表", "", "", ""},
		{"select with join", "SELECT a.商品名 FROM 商品信息表 a LEFT JOIN 顾客信息表 b ON a.id = b.id", "", "", ""},
		{"empty", "", ReasonNotASelect, "", ""},
		{"delete statement", "DELETE FROM 商品信息表 WHERE id = 1", ReasonNotASelect, "", "anchor check fires before the keyword scan"},
		{"insert statement", "INSERT INTO 商品信息表 VALUES (1)", ReasonNotASelect, "", ""},
		{"prose answer", "好的，这是您要的SELECT语句", ReasonNotASelect, "", "model prose ahead of the statement"},
		{"stacked statement", "SELECT * FROM 商品信息表 WHERE id = 1 OR 1=1 UNION SELECT * FROM users -- DROP TABLE x", ReasonForbiddenKeyword, "DROP", ""},
		{"drop after select", "SELECT * FROM t WHERE EXISTS (DROP TABLE t)", ReasonForbiddenKeyword, "DROP", ""},
		{"exec keyword", "SELECT * FROM t WHERE name = EXEC", ReasonForbiddenKeyword, "EXEC", ""},
		{"lowercase keyword", "select * from t where x = 'truncate everything'", ReasonForbiddenKeyword, "TRUNCATE", "substring scan is case-insensitive"},
		// Known limitation: the denylist is substring containment, so a
		// harmless identifier containing a keyword is rejected too.
		{"false positive on identifier", "SELECT * FROM updates", ReasonForbiddenKeyword, "UPDATE", "documented over-trigger"},
	}

	f := NewFilter()
	catalog := testCatalog()

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := f.Validate(tc.sql, catalog)
			if tc.wantReason == "" {
				if err != nil {
					t.Fatalf("Validate(%q) = %v; want accept", tc.sql, err)
				}
				return
			}
			var safetyErr *SafetyError
			if !errors.As(err, &safetyErr) {
				t.Fatalf("Validate(%q) = %v; want *SafetyError", tc.sql, err)
			}
			if safetyErr.Reason != tc.wantReason {
				t.Errorf("Validate(%q) reason = %q; want %q. %s", tc.sql, safetyErr.Reason, tc.wantReason, tc.comment)
			}
			if safetyErr.Keyword != tc.wantKw {
				t.Errorf("Validate(%q) keyword = %q; want %q", tc.sql, safetyErr.Keyword, tc.wantKw)
			}
		})
	}
}

func TestFilterValidateIsDeterministic(t *testing.T) {
	f := NewFilter()
	catalog := testCatalog()
	inputs := []string{
		"SELECT * FROM 商品信息表",
		"DELETE FROM 商品信息表",
		"SELECT * FROM t; DROP TABLE t",
	}
	for _, sql := range inputs {
		first := f.Validate(sql, catalog)
		for i := 0; i < 3; i++ {
			again := f.Validate(sql, catalog)
			if (first == nil) != (again == nil) {
				t.Fatalf("Validate(%q) verdict changed between calls", sql)
			}
			if first != nil && first.Error() != again.Error() {
				t.Fatalf("Validate(%q) reason changed between calls: %v vs %v", sql, first, again)
			}
		}
	}
}

func TestFilterValidateNilCatalog(t *testing.T) {
	// The diagnostic pass is optional; validation works without a catalog.
	f := NewFilter()
	if err := f.Validate("SELECT * FROM anywhere", nil); err != nil {
		t.Fatalf("Validate with nil catalog = %v; want accept", err)
	}
}
