package shopify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckTemplate(t *testing.T) {
	t.Run("identical columns", func(t *testing.T) {
		report := CheckTemplate(Columns)
		assert.True(t, report.OK())
		assert.Empty(t, report.Missing)
		assert.Empty(t, report.Extra)
	})

	t.Run("case and whitespace insensitive", func(t *testing.T) {
		columns := make([]string, 0, len(Columns))
		for _, c := range Columns {
			columns = append(columns, "  "+c+" ")
		}
		columns[0] = "\ufeffhandle"

		report := CheckTemplate(columns)
		assert.True(t, report.OK())
	})

	t.Run("missing and extra columns", func(t *testing.T) {
		columns := []string{"Handle", "Title", "SEO Title", "Gift Card", ""}

		report := CheckTemplate(columns)
		assert.False(t, report.OK())
		assert.Contains(t, report.Missing, "Body (HTML)")
		assert.Contains(t, report.Missing, "URL")
		assert.NotContains(t, report.Missing, "Handle")
		assert.Equal(t, []string{"SEO Title", "Gift Card"}, report.Extra)
	})

	t.Run("empty template", func(t *testing.T) {
		report := CheckTemplate(nil)
		assert.Equal(t, Columns, report.Missing)
	})
}
