package value

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/zeuscore/internal/core/geom"
)

func TestParseLayerAndPosition(t *testing.T) {
	v, err := Parse(`{"layer": 3, "position": Vec3(1,2,3)}`)
	require.NoError(t, err)

	layer, ok := v.Get("layer")
	require.True(t, ok)
	i, ok := layer.AsInt32()
	assert.True(t, ok)
	assert.Equal(t, int32(3), i)

	pos, ok := v.Get("position")
	require.True(t, ok)
	vec, ok := pos.AsVec3()
	assert.True(t, ok)
	assert.Equal(t, geom.Vec3{X: 1, Y: 2, Z: 3}, vec)
}

func TestParseEmpty(t *testing.T) {
	for _, in := range []string{"", "   \n\t", "# only a comment\n"} {
		v, err := Parse(in)
		require.NoError(t, err, in)
		assert.True(t, v.IsNull(), in)
	}
}

func TestParseScalars(t *testing.T) {
	tests := []struct {
		in   string
		want Value
	}{
		{"42", Int(42)},
		{"-7", Int(-7)},
		{"1.5", Float(1.5)},
		{"-2.", Float(-2)},
		{"1e3", Float(1000)},
		{`"hi"`, String("hi")},
		{"bare_word", String("bare_word")},
		{"null", Null()},
		{"Ang3(90, 0, 45)", Angles(geom.Angles{Yaw: 90, Roll: 45})},
		{"Quat(0, 0, 0, 1)", Quat(geom.IdentityQuat())},
		{"Vec4(1, 2, 3, 4.5)", Vec4(geom.Vec4{X: 1, Y: 2, Z: 3, W: 4.5})},
		{"Mat3(1,0,0, 0,1,0, 0,0,1)", Mat3(geom.Identity3())},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		require.NoError(t, err, tt.in)
		assert.True(t, Equal(tt.want, got), "%s: got %s", tt.in, got)
	}
}

func TestParseEscapes(t *testing.T) {
	v, err := Parse(`{msg: "a \"quoted\" {brace}, [x]\nline\\end"}`)
	require.NoError(t, err)

	msg, ok := v.Get("msg")
	require.True(t, ok)
	s, ok := msg.AsString()
	require.True(t, ok)
	assert.Equal(t, "a \"quoted\" {brace}, [x]\nline\\end", s)
}

func TestParseNested(t *testing.T) {
	src := `{
		name: camera,
		layers: [0, 2, {tag: "ui"}],
		lens: { fov: 70.0, clip: [0.1, 100.0], },
	}`
	v, err := Parse(src)
	require.NoError(t, err)

	name, _ := v.Get("name")
	s, _ := name.AsString()
	assert.Equal(t, "camera", s)

	layers, ok := v.Get("layers")
	require.True(t, ok)
	assert.Equal(t, 3, layers.Len())

	tag, ok := v.Lookup("layers[2].tag")
	require.True(t, ok)
	s, _ = tag.AsString()
	assert.Equal(t, "ui", s)

	far, ok := v.Lookup("lens.clip.1")
	require.True(t, ok)
	f, _ := far.AsFloat32()
	assert.Equal(t, float32(100), f)
}

func TestParseTopLevelComponent(t *testing.T) {
	v, err := Parse(`speed: Ang3(0, 90, 0)`)
	require.NoError(t, err)

	name, inner, ok := v.AsComponent()
	require.True(t, ok)
	assert.Equal(t, "speed", name)
	assert.Equal(t, KindAngles, inner.Kind())
}

func TestParseDuplicateNamesFirstWins(t *testing.T) {
	v, err := Parse(`{layer: 1, layer: 2}`)
	require.NoError(t, err)
	assert.Equal(t, 2, v.Len())

	layer, _ := v.Get("layer")
	i, _ := layer.AsInt32()
	assert.Equal(t, int32(1), i)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		in   string
		want error
	}{
		{`{layer: }`, ErrMissingValue},
		{`layer:`, ErrMissingValue},
		{`{a: , b: 1}`, ErrMissingValue},
		{`Vec3(1, 2)`, ErrArity},
		{`Vec3(1, 2, 3, 4)`, ErrArity},
		{`Quat()`, ErrArity},
		{`{a: 1`, ErrUnbalanced},
		{`[1, 2}`, ErrUnbalanced},
		{`{a: 1}}`, ErrUnbalanced},
		{`Vec3(1, 2, 3`, ErrUnbalanced},
		{`{a: 1 b: 2}`, ErrUnexpectedToken},
		{`1 2`, ErrUnexpectedToken},
		{`[1,, 2]`, ErrUnexpectedToken},
		{`Vec3(1, x, 3)`, ErrUnexpectedToken},
		{`Bogus(1)`, ErrBadLiteral},
		{`"unterminated`, ErrBadLiteral},
		{`"bad \q escape"`, ErrBadLiteral},
		{`99999999999999999999`, ErrBadLiteral},
	}
	for _, tt := range tests {
		_, err := Parse(tt.in)
		require.Error(t, err, tt.in)
		assert.True(t, errors.Is(err, tt.want), "%s: got %v", tt.in, err)

		var perr *ParseError
		assert.True(t, errors.As(err, &perr), tt.in)
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, err := Parse("{\n  ok: 1,\n  broken: \n}")
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 3, perr.Pos.Line)
	assert.Equal(t, 3, perr.Pos.Column)
	assert.Equal(t, "broken", perr.Token)
}

func TestLexErrorPosition(t *testing.T) {
	_, err := Parse("{\n  ok: @}")
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.True(t, errors.Is(err, ErrBadLiteral))
	assert.Equal(t, 2, perr.Pos.Line)
	assert.Equal(t, 7, perr.Pos.Column)
	assert.True(t, strings.HasPrefix(err.Error(), "2:7: "), err.Error())
	assert.NotContains(t, err.Error(), "1:1")
}

func TestFormatRoundTrip(t *testing.T) {
	original := Object().
		Set("layer", Int(3)).
		Set("fov", Float(70)).
		Set("label", String("main \"cam\"\n")).
		Set("position", Vec3(geom.Vec3{X: 1.25, Y: -2, Z: 1e6})).
		Set("rotation", Quat(geom.Angles{Yaw: 30}.Quat())).
		Set("world", Mat4(geom.Identity4())).
		Set("tags", Array(String("a"), Null(), Int(-1))).
		Set("empty", Array()).
		Set("weird name", Int(0)).
		Build()

	text := Format(original)
	parsed, err := Parse(text)
	require.NoError(t, err, text)
	assert.True(t, Equal(original, parsed), "text: %s\nparsed: %s", text, parsed)
}
