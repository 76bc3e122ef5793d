package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiltsoft/stitch/internal/identity"
)

func TestDecode_Scalars(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		expect Value
	}{
		{"string", `"hello"`, String("hello")},
		{"bool true", `true`, Bool(true)},
		{"bool false", `false`, Bool(false)},
		{"int", `42`, Int(42)},
		{"negative int", `-7`, Int(-7)},
		{"float", `3.5`, Float(3.5)},
		{"exponent is float", `1e3`, Float(1000)},
		{"null", `null`, Null{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := Decode([]byte(tc.input))
			require.NoError(t, err)
			assert.Equal(t, tc.expect, v)
		})
	}
}

func TestDecode_LargeInt_StaysExact(t *testing.T) {
	v, err := Decode([]byte(`9007199254740993`)) // 2^53 + 1, loses precision as float64
	require.NoError(t, err)
	assert.Equal(t, Int(9007199254740993), v)
}

func TestDecode_LinkBeforeObject(t *testing.T) {
	data := []byte(`{"sys": {"type": "Link", "linkType": "Entry", "id": "e42"}}`)

	v, err := Decode(data)
	require.NoError(t, err)

	link, ok := v.(Link)
	require.True(t, ok, "link shape must decode as Link, not as a plain mapping")
	assert.Equal(t, identity.KindEntry, link.TargetKind)
	assert.Equal(t, "e42", link.TargetID)
}

func TestDecode_AssetLink(t *testing.T) {
	data := []byte(`{"sys": {"type": "Link", "linkType": "Asset", "id": "a1"}}`)

	v, err := Decode(data)
	require.NoError(t, err)

	link, ok := v.(Link)
	require.True(t, ok)
	assert.Equal(t, identity.KindAsset, link.TargetKind)
}

func TestDecode_SysObjectWithSiblings_IsPlainObject(t *testing.T) {
	// An object that merely CONTAINS a sys member is not a link.
	data := []byte(`{"sys": {"type": "Link", "linkType": "Entry", "id": "e1"}, "extra": 1}`)

	v, err := Decode(data)
	require.NoError(t, err)

	_, ok := v.(Object)
	assert.True(t, ok, "extra members disqualify the link shape")
}

func TestDecode_UnknownLinkTypeIsPlainObject(t *testing.T) {
	data := []byte(`{"sys": {"type": "Link", "linkType": "Widget", "id": "w1"}}`)

	v, err := Decode(data)
	require.NoError(t, err)
	_, ok := v.(Object)
	assert.True(t, ok)
}

func TestDecode_FileMetaBeforeObject(t *testing.T) {
	data := []byte(`{
		"url": "//images.example/cat.png",
		"fileName": "cat.png",
		"contentType": "image/png",
		"details": {"size": 2048, "image": {"width": 640, "height": 480}}
	}`)

	v, err := Decode(data)
	require.NoError(t, err)

	file, ok := v.(FileMeta)
	require.True(t, ok, "file shape must decode as FileMeta, not as a plain mapping")
	assert.Equal(t, "cat.png", file.FileName)
	assert.Equal(t, "image/png", file.ContentType)
	assert.Equal(t, int64(2048), file.Size)
	assert.Equal(t, int64(640), file.Width)
	assert.Equal(t, int64(480), file.Height)
}

func TestDecode_NestedContainers(t *testing.T) {
	data := []byte(`{"tags": ["a", "b"], "meta": {"depth": 2}}`)

	v, err := Decode(data)
	require.NoError(t, err)

	obj, ok := v.(Object)
	require.True(t, ok)
	assert.Equal(t, List{String("a"), String("b")}, obj["tags"])
	assert.Equal(t, Object{"depth": Int(2)}, obj["meta"])
}

func TestDecode_LinksInsideList(t *testing.T) {
	data := []byte(`[
		{"sys": {"type": "Link", "linkType": "Entry", "id": "e1"}},
		{"sys": {"type": "Link", "linkType": "Entry", "id": "e2"}}
	]`)

	v, err := Decode(data)
	require.NoError(t, err)

	list, ok := v.(List)
	require.True(t, ok)
	links := list.Links()
	require.Len(t, links, 2)
	assert.Equal(t, "e1", links[0].TargetID)
	assert.Equal(t, "e2", links[1].TargetID)
}

func TestList_Links_MixedListIsNotLinkArray(t *testing.T) {
	data := []byte(`[{"sys": {"type": "Link", "linkType": "Entry", "id": "e1"}}, "plain"]`)

	v, err := Decode(data)
	require.NoError(t, err)

	list := v.(List)
	assert.Nil(t, list.Links(), "heterogeneous list must not register as a link array")
}

func TestLink_Key(t *testing.T) {
	l := Link{TargetKind: identity.KindEntry, TargetID: "e1"}
	assert.Equal(t, "Entry_e1_en-US", l.Key("en-US").String())
	assert.Equal(t, "Entry_e1", l.Key("").String())
}

func TestMarshalCanonical_Deterministic(t *testing.T) {
	obj := Object{
		"b":     Int(2),
		"a":     String("x"),
		"float": Float(1.0),
		"null":  Null{},
	}

	first, err := MarshalCanonical(obj)
	require.NoError(t, err)
	second, err := MarshalCanonical(obj)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, `{"a":"x","b":2,"float":1,"null":null}`, string(first))
}

func TestMarshalCanonical_FloatForms(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want string
	}{
		{"integral", 1.0, "1"},
		{"fractional", 0.5, "0.5"},
		{"negative zero", math.Copysign(0, -1), "0"},
		{"large positional", 1.2345678901234568e20, "123456789012345680000"},
		{"exponent threshold", 1e21, "1e+21"},
		{"small positional", 0.000001, "0.000001"},
		{"small exponent", 1e-7, "1e-7"},
		{"negative exponent form", -2.5e22, "-2.5e+22"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := MarshalCanonical(Float(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(b))
		})
	}
}

func TestMarshalCanonical_NonFiniteFloat(t *testing.T) {
	_, err := MarshalCanonical(Float(math.NaN()))
	assert.Error(t, err)

	_, err = MarshalCanonical(Float(math.Inf(1)))
	assert.Error(t, err)
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	b, err := MarshalCanonical(String("<a> & </a>"))
	require.NoError(t, err)
	assert.Equal(t, `"<a> & </a>"`, string(b))
}

func TestMarshalCanonical_LinkRoundTrips(t *testing.T) {
	l := Link{TargetKind: identity.KindEntry, TargetID: "e1"}

	b, err := MarshalCanonical(l)
	require.NoError(t, err)

	back, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, l, back)
}

func TestMarshalValue_WireShapes(t *testing.T) {
	l := Link{TargetKind: identity.KindAsset, TargetID: "a1"}
	b, err := MarshalValue(l)
	require.NoError(t, err)

	back, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, l, back)
}
