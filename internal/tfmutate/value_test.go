package tfmutate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat_StringPrecedence(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{"already quoted passes through", `"already quoted"`, `"already quoted"`},
		{"expression marker stays raw", "var.image_tag", "var.image_tag"},
		{"comparison stays raw", "count > 3", "count > 3"},
		{"data reference stays raw", "data.aws_ami.ubuntu.id", "data.aws_ami.ubuntu.id"},
		{"bool true bare", "true", "true"},
		{"bool mixed case bare", "True", "true"},
		{"bool false bare", "FALSE", "false"},
		{"cidr quoted despite digits", "10.0.0.0/16", `"10.0.0.0/16"`},
		{"dotted quad quoted", "10.0.0.0", `"10.0.0.0"`},
		{"dashed identifier quoted", "t3-large", `"t3-large"`},
		{"underscored identifier quoted", "my_app", `"my_app"`},
		{"colon address quoted", "host:8080", `"host:8080"`},
		{"integer bare", "42", "42"},
		{"negative number quoted by dash rule", "-7", `"-7"`},
		{"decimal bare", "1.5", "1.5"},
		{"plain word quoted", "production", `"production"`},
		{"version string quoted", "1.2.3", `"1.2.3"`}, // three dots: not a number, not a quad
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Format(tc.input))
		})
	}
}

func TestFormat_NativeValues(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "true", Format(true))
	assert.Equal(t, "3", Format(3))
	assert.Equal(t, "2.5", Format(2.5))
	assert.Equal(t, `["a", "b"]`, Format([]any{"a", "b"}))
	assert.Equal(t, `[1, 2, 3]`, Format([]any{1, 2, 3}))
	assert.Equal(t, `[]`, Format([]any{}))
}

func TestFormat_NativeListItemsNotReclassified(t *testing.T) {
	t.Parallel()

	// A string element that would classify as a number on its own must stay
	// a quoted string inside a native list.
	assert.Equal(t, `["42", "true"]`, Format([]any{"42", "true"}))
}

func TestClassify_ListStrings(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{"json list", `["a", "b"]`, `["a", "b"]`},
		{"single quoted list", `['a', 'b']`, `["a", "b"]`},
		{"bare items list", `[alpha, beta]`, `["alpha", "beta"]`},
		{"empty list", `[]`, `[]`},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			val := Classify(tc.input)
			require.Equal(t, KindList, val.Kind)
			assert.Equal(t, tc.want, val.Literal())
		})
	}
}

func TestClassify_ListStringFallbacks(t *testing.T) {
	t.Parallel()

	// Not JSON and not scannable; the quoted substrings are extracted.
	val := Classify(`[key = "a", other = "b"]`)
	require.Equal(t, KindList, val.Kind)
	assert.Equal(t, `["a", "b"]`, val.Literal())

	// No quoted substrings and no scannable items: raw passthrough.
	val = Classify(`[local.subnets[0], local.subnets[1]]`)
	require.Equal(t, KindRaw, val.Kind)
	assert.Equal(t, `[local.subnets[0], local.subnets[1]]`, val.Literal())
}

func TestClassify_Deterministic(t *testing.T) {
	t.Parallel()

	inputs := []any{"10.0.0.0/16", "42", "true", "var.x", `["a"]`, []any{"a", 1}}
	for _, input := range inputs {
		first := Format(input)
		for i := 0; i < 3; i++ {
			require.Equal(t, first, Format(input), "classification must be deterministic for %v", input)
		}
	}
}

func TestValue_CtyConversion(t *testing.T) {
	t.Parallel()

	_, ok := Classify("var.image_tag").ctyValue()
	assert.False(t, ok, "raw expressions have no cty representation")

	v, ok := Classify("42").ctyValue()
	require.True(t, ok)
	assert.Equal(t, "number", v.Type().FriendlyName())

	v, ok = Classify("true").ctyValue()
	require.True(t, ok)
	assert.Equal(t, "bool", v.Type().FriendlyName())

	_, ok = Classify([]any{"a", "b"}).ctyValue()
	assert.True(t, ok)
}
