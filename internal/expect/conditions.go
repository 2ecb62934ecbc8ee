package expect

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/adyen/storefront-e2e/internal/browser"
)

// Visible holds when the first match of selector is rendered and visible.
func Visible(selector string) Condition {
	return Condition{
		Description: selector + " to be visible",
		Check: func(ctx context.Context, page browser.Page) (bool, string, error) {
			ok, err := page.IsVisible(ctx, selector)
			return ok, "visible=" + strconv.FormatBool(ok), err
		},
	}
}

// Exist holds when at least one element matches selector.
func Exist(selector string) Condition {
	return Condition{
		Description: selector + " to exist",
		Check: func(ctx context.Context, page browser.Page) (bool, string, error) {
			n, err := page.Count(ctx, selector)
			return n > 0, fmt.Sprintf("%d matches", n), err
		},
	}
}

// NotExist holds when nothing matches selector.
func NotExist(selector string) Condition {
	return Condition{
		Description: selector + " not to exist",
		Check: func(ctx context.Context, page browser.Page) (bool, string, error) {
			n, err := page.Count(ctx, selector)
			return n == 0, fmt.Sprintf("%d matches", n), err
		},
	}
}

func enabledState(selector string, want bool) Condition {
	desc := selector + " to be enabled"
	if !want {
		desc = selector + " to be disabled"
	}
	return Condition{
		Description: desc,
		Check: func(ctx context.Context, page browser.Page) (bool, string, error) {
			ok, err := page.IsEnabled(ctx, selector)
			return ok == want, "enabled=" + strconv.FormatBool(ok), err
		},
	}
}

// Enabled holds when the first match of selector is not disabled.
func Enabled(selector string) Condition {
	return enabledState(selector, true)
}

// Disabled holds when the first match of selector is disabled.
func Disabled(selector string) Condition {
	return enabledState(selector, false)
}

// ValueEquals holds when the input or select has exactly value.
func ValueEquals(selector, value string) Condition {
	return Condition{
		Description: fmt.Sprintf("%s to have value %q", selector, value),
		Check: func(ctx context.Context, page browser.Page) (bool, string, error) {
			v, err := page.InputValue(ctx, selector)
			return v == value, strconv.Quote(v), err
		},
	}
}

// TextContains holds when the element's text content contains text.
func TextContains(selector, text string) Condition {
	return Condition{
		Description: fmt.Sprintf("%s to contain text %q", selector, text),
		Check: func(ctx context.Context, page browser.Page) (bool, string, error) {
			v, err := page.TextContent(ctx, selector)
			return strings.Contains(v, text), strconv.Quote(v), err
		},
	}
}

// TextNotContains holds when the element exists and its text lacks text.
func TextNotContains(selector, text string) Condition {
	return Condition{
		Description: fmt.Sprintf("%s not to contain text %q", selector, text),
		Check: func(ctx context.Context, page browser.Page) (bool, string, error) {
			v, err := page.TextContent(ctx, selector)
			return !strings.Contains(v, text), strconv.Quote(v), err
		},
	}
}

// TextMatches holds when the trimmed text content matches re.
func TextMatches(selector string, re *regexp.Regexp) Condition {
	return Condition{
		Description: fmt.Sprintf("%s text to match %s", selector, re),
		Check: func(ctx context.Context, page browser.Page) (bool, string, error) {
			v, err := page.TextContent(ctx, selector)
			return re.MatchString(strings.TrimSpace(v)), strconv.Quote(v), err
		},
	}
}

// NotEmpty holds when the element has non-blank text content.
func NotEmpty(selector string) Condition {
	return Condition{
		Description: selector + " not to be empty",
		Check: func(ctx context.Context, page browser.Page) (bool, string, error) {
			v, err := page.TextContent(ctx, selector)
			return strings.TrimSpace(v) != "", strconv.Quote(v), err
		},
	}
}

// CountEquals holds when exactly n elements match selector.
func CountEquals(selector string, n int) Condition {
	return Condition{
		Description: fmt.Sprintf("%s to have length %d", selector, n),
		Check: func(ctx context.Context, page browser.Page) (bool, string, error) {
			got, err := page.Count(ctx, selector)
			return got == n, fmt.Sprintf("length %d", got), err
		},
	}
}

// CountGreaterThan holds when more than n elements match selector.
func CountGreaterThan(selector string, n int) Condition {
	return Condition{
		Description: fmt.Sprintf("%s to have length greater than %d", selector, n),
		Check: func(ctx context.Context, page browser.Page) (bool, string, error) {
			got, err := page.Count(ctx, selector)
			return got > n, fmt.Sprintf("length %d", got), err
		},
	}
}

// URLContains holds when the current URL includes part.
func URLContains(part string) Condition {
	return Condition{
		Description: fmt.Sprintf("url to include %q", part),
		Check: func(ctx context.Context, page browser.Page) (bool, string, error) {
			u, err := page.URL(ctx)
			return strings.Contains(u, part), u, err
		},
	}
}

// URLNotContains holds when the current URL does not include part.
func URLNotContains(part string) Condition {
	return Condition{
		Description: fmt.Sprintf("url not to include %q", part),
		Check: func(ctx context.Context, page browser.Page) (bool, string, error) {
			u, err := page.URL(ctx)
			return !strings.Contains(u, part), u, err
		},
	}
}

// URLMatches holds when the current URL matches re.
func URLMatches(re *regexp.Regexp) Condition {
	return Condition{
		Description: fmt.Sprintf("url to match %s", re),
		Check: func(ctx context.Context, page browser.Page) (bool, string, error) {
			u, err := page.URL(ctx)
			return re.MatchString(u), u, err
		},
	}
}

// AttrPresent holds when the element carries the attribute, with any value.
func AttrPresent(selector, name string) Condition {
	return Condition{
		Description: fmt.Sprintf("%s to have attribute %s", selector, name),
		Check: func(ctx context.Context, page browser.Page) (bool, string, error) {
			_, ok, err := page.Attribute(ctx, selector, name)
			return ok, "present=" + strconv.FormatBool(ok), err
		},
	}
}

// AttrEquals holds when the attribute is present with exactly value.
func AttrEquals(selector, name, value string) Condition {
	return Condition{
		Description: fmt.Sprintf("%s to have attribute %s=%q", selector, name, value),
		Check: func(ctx context.Context, page browser.Page) (bool, string, error) {
			v, ok, err := page.Attribute(ctx, selector, name)
			return ok && v == value, strconv.Quote(v), err
		},
	}
}

// AttrMatches holds when the attribute is present and matches re.
func AttrMatches(selector, name string, re *regexp.Regexp) Condition {
	return Condition{
		Description: fmt.Sprintf("%s attribute %s to match %s", selector, name, re),
		Check: func(ctx context.Context, page browser.Page) (bool, string, error) {
			v, ok, err := page.Attribute(ctx, selector, name)
			return ok && re.MatchString(v), strconv.Quote(v), err
		},
	}
}

// PropEquals holds when a DOM property of the element renders as value.
func PropEquals(selector, name, value string) Condition {
	return Condition{
		Description: fmt.Sprintf("%s to have property %s=%q", selector, name, value),
		Check: func(ctx context.Context, page browser.Page) (bool, string, error) {
			v, err := page.Property(ctx, selector, name)
			return v == value, strconv.Quote(v), err
		},
	}
}

// OptionsEqual holds when the select offers exactly values, in order.
func OptionsEqual(selector string, values []string) Condition {
	return Condition{
		Description: fmt.Sprintf("%s to offer options %v", selector, values),
		Check: func(ctx context.Context, page browser.Page) (bool, string, error) {
			got, err := page.OptionValues(ctx, selector)
			if err != nil {
				return false, "", err
			}
			if len(got) != len(values) {
				return false, fmt.Sprint(got), nil
			}
			for i := range got {
				if got[i] != values[i] {
					return false, fmt.Sprint(got), nil
				}
			}
			return true, fmt.Sprint(got), nil
		},
	}
}

// PageHasText holds when some visible element contains text.
func PageHasText(text string) Condition {
	return Condition{
		Description: fmt.Sprintf("page to contain %q", text),
		Check: func(ctx context.Context, page browser.Page) (bool, string, error) {
			ok, err := page.HasText(ctx, text)
			return ok, "found=" + strconv.FormatBool(ok), err
		},
	}
}

// Storage holds when pred accepts the stored value of key. A missing key is
// passed to pred as ok=false.
func Storage(key, description string, pred func(value string, ok bool) bool) Condition {
	return Condition{
		Description: fmt.Sprintf("storage %s %s", key, description),
		Check: func(ctx context.Context, page browser.Page) (bool, string, error) {
			v, ok, err := page.GetItem(ctx, key)
			if err != nil {
				return false, "", err
			}
			if !ok {
				return pred("", false), "<unset>", nil
			}
			return pred(v, true), v, nil
		},
	}
}

// Not inverts a condition. Lookup failures of missing elements count as the
// inverted condition holding.
func Not(c Condition) Condition {
	return Condition{
		Description: "not " + c.Description,
		Check: func(ctx context.Context, page browser.Page) (bool, string, error) {
			ok, actual, err := c.Check(ctx, page)
			if errors.Is(err, browser.ErrElementNotFound) {
				return true, actual, nil
			}
			return !ok, actual, err
		},
	}
}
