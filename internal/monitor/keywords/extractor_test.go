package keywords

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractStripsLegalForm(t *testing.T) {
	t.Parallel()

	set := Extract("Acme Robotics GmbH", "", "")

	assert.Equal(t, []string{"Acme Robotics GmbH", "Acme Robotics"}, set.All)
	assert.Equal(t, "Acme Robotics GmbH", set.Primary)
	assert.Equal(t, []string{"Acme Robotics"}, set.Variants)
}

func TestExtractNeverEmitsBareLegalForm(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"GmbH", "  gmbh ", "AG", "Ltd.", "LLC"} {
		set := Extract(name, "", "")
		assert.Empty(t, set.All, "input %q", name)
	}
}

func TestExtractDeduplicatesAcrossFields(t *testing.T) {
	t.Parallel()

	set := Extract("Acme Robotics GmbH", "Acme Robotics GmbH", "Acme")

	assert.Equal(t, []string{"Acme Robotics GmbH", "Acme Robotics", "Acme"}, set.All)
}

func TestExtractRejectsShortKeywords(t *testing.T) {
	t.Parallel()

	set := Extract("X", "", "Y")
	assert.Empty(t, set.All)
}

func TestExtractCombinesAllNameFields(t *testing.T) {
	t.Parallel()

	set := Extract("Nordwind", "Nordwind Energie AG", "NW Energie")

	assert.Equal(t, []string{
		"Nordwind",
		"Nordwind Energie AG",
		"Nordwind Energie",
		"NW Energie",
	}, set.All)
	assert.Equal(t, "Nordwind", set.Primary)
}

func TestStripLegalFormRequiresSeparator(t *testing.T) {
	t.Parallel()

	// "Montag" ends in "ag" but carries no separated legal form.
	assert.Equal(t, "Montag", StripLegalForm("Montag"))
	assert.Equal(t, "Freitag Media", StripLegalForm("Freitag Media"))
	assert.Equal(t, "Verein", StripLegalForm("Verein e.V."))
}

func TestIsLegalForm(t *testing.T) {
	t.Parallel()

	assert.True(t, IsLegalForm("GmbH"))
	assert.True(t, IsLegalForm(" gmbh "))
	assert.False(t, IsLegalForm("Acme GmbH"))
}
