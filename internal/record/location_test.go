package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLocationPriority(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name: "destructuring pattern wins over reference location",
			input: `{
				"firstDeclaration": {"path": "/c.ts", "start": {"line": 3, "character": 3}},
				"referenceLocation": {"path": "/b.ts", "start": {"line": 2, "character": 2}},
				"destructuringPattern": {"path": "/a.ts", "start": {"line": 1, "character": 1}}
			}`,
			expected: `{"path":"/a.ts","line":1,"char":1}`,
		},
		{
			name: "reference location wins over first declaration",
			input: `{
				"firstDeclaration": {"path": "/c.ts", "start": {"line": 3, "character": 3}},
				"referenceLocation": {"path": "/b.ts", "start": {"line": 2, "character": 2}}
			}`,
			expected: `{"path":"/b.ts","line":2,"char":2}`,
		},
		{
			name:     "first declaration",
			input:    `{"firstDeclaration": {"path": "/c.ts", "start": {"line": 3, "character": 9}}}`,
			expected: `{"path":"/c.ts","line":3,"char":9}`,
		},
		{
			name:     "missing start",
			input:    `{"firstDeclaration": {"path": "/c.ts"}}`,
			expected: `{"path":"/c.ts"}`,
		},
		{
			name:     "null source is skipped",
			input:    `{"destructuringPattern": null, "firstDeclaration": {"path": "/c.ts", "start": {"line": 1}}}`,
			expected: `{"path":"/c.ts","line":1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, ok := ResolveLocation(mustParse(t, tt.input))
			require.True(t, ok)
			assert.Equal(t, tt.expected, loc.String())
		})
	}
}

func TestResolveLocationAbsent(t *testing.T) {
	_, ok := ResolveLocation(mustParse(t, `{"id":1}`))
	assert.False(t, ok)
}

func TestLocationSourcesOrder(t *testing.T) {
	assert.Equal(t,
		[]string{"destructuringPattern", "referenceLocation", "firstDeclaration"},
		LocationSources())
}
