package querybuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name      string
		build     func() QueryBuilder
		wantQuery string
		wantArgs  []interface{}
	}{
		{
			name: "select with conditions and order",
			build: func() QueryBuilder {
				return NewQueryBuilder("public").
					Select("id", "kind").
					From("tools").
					Where("id = ?", "fibonacci").
					Or("kind = ?", "adder").
					OrderBy("id", true)
			},
			wantQuery: "SELECT id, kind FROM public.tools WHERE id = ? OR kind = ? ORDER BY id ASC",
			wantArgs:  []interface{}{"fibonacci", "adder"},
		},
		{
			name: "select without schema",
			build: func() QueryBuilder {
				return NewQueryBuilder("").Select("id").From("tools").OrderBy("id", false)
			},
			wantQuery: "SELECT id FROM tools ORDER BY id DESC",
		},
		{
			name: "upsert",
			build: func() QueryBuilder {
				return NewQueryBuilder("").
					Insert("id", "kind").
					Into("tools").
					Values("echo", "echo").
					OnConflict("id").
					SetExclude("kind")
			},
			wantQuery: "INSERT INTO tools (id, kind) VALUES (?, ?) ON CONFLICT (id) DO UPDATE SET kind = EXCLUDED.kind",
			wantArgs:  []interface{}{"echo", "echo"},
		},
		{
			name: "insert do nothing with two rows",
			build: func() QueryBuilder {
				return NewQueryBuilder("").
					Insert("id").
					Into("tools").
					Values("a").
					Values("b").
					OnConflict("id")
			},
			wantQuery: "INSERT INTO tools (id) VALUES (?), (?) ON CONFLICT (id) DO NOTHING",
			wantArgs:  []interface{}{"a", "b"},
		},
		{
			name: "insert with ragged row is rejected",
			build: func() QueryBuilder {
				return NewQueryBuilder("").Insert("id", "kind").Into("tools").Values("a")
			},
		},
		{
			name: "delete",
			build: func() QueryBuilder {
				return NewQueryBuilder("").Delete("tools").Where("id = ?", "echo")
			},
			wantQuery: "DELETE FROM tools WHERE id = ?",
			wantArgs:  []interface{}{"echo"},
		},
		{
			name: "unconditional delete is rejected",
			build: func() QueryBuilder {
				return NewQueryBuilder("").Delete("tools")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := tt.build().Build()
			assert.Equal(t, tt.wantQuery, query)
			assert.Equal(t, len(tt.wantArgs), len(args))
			if len(tt.wantArgs) > 0 {
				assert.Equal(t, tt.wantArgs, args)
			}
		})
	}
}
