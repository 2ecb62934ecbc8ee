package steps

import (
	"os"
	"path/filepath"
	"testing"

	gherkin "github.com/cucumber/gherkin/go/v26"
	messages "github.com/cucumber/messages/go/v21"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const featuresDir = "../../features"

type capture struct {
	exprs []interface{}
}

func (c *capture) Step(expr, _ interface{}) {
	c.exprs = append(c.exprs, expr)
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	// GIVEN
	target := &capture{}
	r := NewRegistry(target)

	// WHEN the same expression is bound twice
	r.Step(`^I am on the homepage$`, func() {})
	r.Step(`^I am on the homepage$`, func() {})

	// THEN only the first reaches godog
	require.ErrorIs(t, r.Err(), ErrDuplicateStep)
	assert.Len(t, target.exprs, 1)
	assert.Equal(t, []string{`^I am on the homepage$`}, r.Expressions())
}

func TestRegistry_RejectsInvalidExpressions(t *testing.T) {
	r := NewRegistry(nil)

	r.Step(`^I click (the$`, func() {})

	assert.Error(t, r.Err())
	assert.Empty(t, r.Expressions())
}

func TestRegistry_Matches(t *testing.T) {
	r := NewRegistry(nil)
	r.Step(`^the cart should contain "(\d+)" items?$`, func() {})
	r.Step(`^the cart should be empty$`, func() {})

	assert.Equal(t, []string{`^the cart should contain "(\d+)" items?$`}, r.Matches(`the cart should contain "1" item`))
	assert.Empty(t, r.Matches(`the cart should contain items`))
}

func TestCatalogue(t *testing.T) {
	r, err := Catalogue()

	require.NoError(t, err)
	assert.NotEmpty(t, r.Expressions())
	for _, expr := range r.Expressions() {
		assert.Regexp(t, `^\^.*\$$`, expr, "expressions are anchored")
	}
}

func TestFeatureSteps_MatchExactlyOneDefinition(t *testing.T) {
	r, err := Catalogue()
	require.NoError(t, err)

	files, err := filepath.Glob(filepath.Join(featuresDir, "*.feature"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	used := map[string]bool{}
	for _, file := range files {
		for _, text := range pickleSteps(t, file) {
			matches := r.Matches(text)
			if assert.Len(t, matches, 1, "%s: step %q", filepath.Base(file), text) {
				used[matches[0]] = true
			}
		}
	}

	for _, expr := range r.Expressions() {
		assert.True(t, used[expr], "step %s is not used by any feature", expr)
	}
}

func pickleSteps(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	newID := (&messages.Incrementing{}).NewId
	doc, err := gherkin.ParseGherkinDocument(f, newID)
	require.NoError(t, err, path)

	var texts []string
	for _, pickle := range gherkin.Pickles(*doc, path, newID) {
		for _, step := range pickle.Steps {
			texts = append(texts, step.Text)
		}
	}
	return texts
}
