package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustJSON(t *testing.T, src string) Value {
	t.Helper()
	v, err := ParseJSON([]byte(src))
	require.NoError(t, err)
	return v
}

func TestValidate_ValidDocument(t *testing.T) {
	node := ObjectSchema(
		Prop("name", StringSchema()),
		Prop("age", IntegerSchema().WithMinimum(0)),
		Prop("tags", ArraySchema(StringSchema()).WithMinItems(1)),
	).Require("name", "age")
	require.NoError(t, node.Compile())

	doc := mustJSON(t, `{"name":"Ada","age":36,"tags":["math"]}`)
	assert.Empty(t, Validate(doc, node, ""))
}

func TestValidate_KindMismatchShortCircuits(t *testing.T) {
	node := ObjectSchema(
		Prop("a", StringSchema()),
	).Require("a", "b")

	got := Validate(mustJSON(t, `[{"a": 1}]`), node, "")

	require.Len(t, got, 1)
	assert.Equal(t, Violation{Path: "", Message: "expected object", Code: CodeKind}, got[0])
}

func TestValidate_NestedKindMismatchStopsDescent(t *testing.T) {
	node := ObjectSchema(
		Prop("location", ObjectSchema(Prop("city", StringSchema())).Require("city", "country")),
	)

	got := Validate(mustJSON(t, `{"location": "Prague"}`), node, "")

	require.Len(t, got, 1)
	assert.Equal(t, "location", got[0].Path)
	assert.Equal(t, "expected object", got[0].Message)
}

func TestValidate_RequiredAccumulates(t *testing.T) {
	node := ObjectSchema().Require("a", "b")

	got := Validate(mustJSON(t, `{}`), node, "")

	require.Len(t, got, 2)
	assert.Equal(t, []string{"a", "b"}, got.Paths())
	for _, v := range got {
		assert.Equal(t, "required", v.Message)
		assert.Equal(t, CodeRequired, v.Code)
	}
}

func TestValidate_RequiredUnderPrefix(t *testing.T) {
	node := ObjectSchema().Require("city")

	got := Validate(mustJSON(t, `{}`), node, "location")

	require.Len(t, got, 1)
	assert.Equal(t, "location.city", got[0].Path)
}

func TestValidate_ArrayItemPaths(t *testing.T) {
	node := ObjectSchema(
		Prop("items", ArraySchema(StringSchema())),
	)

	got := Validate(mustJSON(t, `{"items":["ok", 5]}`), node, "")

	require.Len(t, got, 1)
	assert.Equal(t, "items[1]", got[0].Path)
	assert.Equal(t, "expected string", got[0].Message)
}

func TestValidate_NestedArrayOfObjects(t *testing.T) {
	line := ObjectSchema(
		Prop("dish", StringSchema()),
		Prop("qty", IntegerSchema().WithMinimum(1)),
		Prop("price", NumberSchema().WithMinimum(0)),
	).Require("dish", "qty", "price")
	node := ObjectSchema(Prop("items", ArraySchema(line).WithMinItems(1)))

	doc := mustJSON(t, `{"items":[
		{"dish":"soup","qty":1,"price":3.5},
		{"dish":"tea","qty":0,"price":-1},
		{"qty":2.5}
	]}`)
	got := Validate(doc, node, "")

	assert.Equal(t, []string{
		"items[1].qty: minimum 1",
		"items[1].price: minimum 0",
		"items[2].dish: required",
		"items[2].price: required",
		"items[2].qty: expected integer",
	}, got.Strings())
}

func TestValidate_MinItemsAfterItems(t *testing.T) {
	node := ArraySchema(StringSchema()).WithMinItems(3)

	got := Validate(mustJSON(t, `["a", 1]`), node, "cuisines")

	assert.Equal(t, []string{"cuisines[1]: expected string", "cuisines: minItems 3"}, got.Strings())
	assert.Equal(t, CodeMinItems, got[1].Code)
}

func TestValidate_EmptyArrayMinItems(t *testing.T) {
	node := ArraySchema(nil).WithMinItems(1)

	got := Validate(Array(), node, "items")

	require.Len(t, got, 1)
	assert.Equal(t, "minItems 1", got[0].Message)
}

func TestValidate_NumericBounds(t *testing.T) {
	node := NumberSchema().WithMinimum(0).WithMaximum(5)
	require.NoError(t, node.Compile())

	assert.Empty(t, Validate(Number(4.2), node, ""))
	assert.Empty(t, Validate(Number(0), node, ""))
	assert.Empty(t, Validate(Number(5), node, ""))

	got := Validate(Number(7.0), node, "")
	require.Len(t, got, 1)
	assert.Equal(t, "", got[0].Path)
	assert.Equal(t, "maximum 5", got[0].Message)
	assert.Equal(t, CodeMaximum, got[0].Code)

	got = Validate(Number(-0.5), node, "rating")
	require.Len(t, got, 1)
	assert.Equal(t, "rating: minimum 0", got[0].String())
}

func TestValidate_InvertedBoundsBothFire(t *testing.T) {
	node := NumberSchema().WithMinimum(10).WithMaximum(1)
	require.NoError(t, node.Compile())

	got := Validate(Number(5), node, "")
	require.Len(t, got, 2)
	assert.Equal(t, []Code{CodeMinimum, CodeMaximum}, []Code{got[0].Code, got[1].Code})

	parsed, err := ParseSchema([]byte("kind: number\nminimum: 10\nmaximum: 1\n"))
	require.NoError(t, err)
	assert.Len(t, Validate(Number(5), parsed, "total"), 2)
}

func TestValidate_Pattern(t *testing.T) {
	node := StringSchema().WithPattern(`^.+@.+\..+$`)
	require.NoError(t, node.Compile())

	got := Validate(String("bad-email"), node, "")
	require.Len(t, got, 1)
	assert.Equal(t, "pattern mismatch", got[0].Message)

	assert.Empty(t, Validate(String("a@b.com"), node, ""))
}

func TestValidate_PatternOnUncompiledNode(t *testing.T) {
	node := &Node{Kind: KindString, Pattern: "^[0-9]+$"}
	assert.Len(t, Validate(String("12a"), node, ""), 1)
	assert.Empty(t, Validate(String("123"), node, ""))

	broken := &Node{Kind: KindString, Pattern: "(["}
	assert.Empty(t, Validate(String("anything"), broken, ""))
}

func TestValidate_IntegerKind(t *testing.T) {
	node := IntegerSchema()

	tests := []struct {
		src  string
		want int
	}{
		{`1`, 0},
		{`-42`, 0},
		{`1.0`, 0},
		{`1e3`, 0},
		{`1.5`, 1},
		{`"1"`, 1},
		{`true`, 1},
		{`null`, 1},
	}
	for _, tt := range tests {
		got := Validate(mustJSON(t, tt.src), node, "")
		assert.Len(t, got, tt.want, "value %s", tt.src)
	}
}

func TestValidate_NumberKindAcceptsIntegers(t *testing.T) {
	assert.Empty(t, Validate(mustJSON(t, `3`), NumberSchema(), ""))
	assert.Empty(t, Validate(mustJSON(t, `3.25`), NumberSchema(), ""))
	assert.Len(t, Validate(mustJSON(t, `"3"`), NumberSchema(), ""), 1)
}

func TestValidate_BooleanKind(t *testing.T) {
	assert.Empty(t, Validate(Bool(false), BooleanSchema(), ""))
	got := Validate(Number(0), BooleanSchema(), "vegan")
	require.Len(t, got, 1)
	assert.Equal(t, "vegan: expected boolean", got[0].String())
}

func TestValidate_DateKind(t *testing.T) {
	node := DateSchema()

	valid := []Value{
		Time(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)),
		String("2024-05-01T12:00:00Z"),
		String("2024-05-01T12:00:00.123+02:00"),
		String("2024-05-01"),
		String("2024-05-01 08:30:00"),
	}
	for _, v := range valid {
		assert.Empty(t, Validate(v, node, ""), "value %v", v.Interface())
	}

	tests := []struct {
		name string
		in   string
	}{
		{"space separated minutes", "2024-05-01 10:00"},
		{"space separated fraction", "2024-05-01 10:00:00.5"},
		{"offset without colon", "2024-05-01T10:00:00+0200"},
		{"minutes with offset", "2024-05-01T10:00+02:00"},
		{"slash date", "2024/05/01"},
		{"slash date time", "2024/05/01 10:00:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ParseDate(tt.in)
			assert.True(t, ok)
			assert.Empty(t, Validate(String(tt.in), node, ""))
		})
	}

	invalid := []Value{String("yesterday"), String(""), Number(1714564800), Null()}
	for _, v := range invalid {
		got := Validate(v, node, "joined")
		require.Len(t, got, 1, "value %v", v.Interface())
		assert.Equal(t, "expected date", got[0].Message)
	}
}

func TestValidate_ObjectExcludesNullAndArrays(t *testing.T) {
	node := ObjectSchema()
	assert.Len(t, Validate(Null(), node, ""), 1)
	assert.Len(t, Validate(Array(), node, ""), 1)
	assert.Len(t, Validate(String("{}"), node, ""), 1)
	assert.Empty(t, Validate(Object(nil), node, ""))
}

func TestValidate_ExtraKeysIgnored(t *testing.T) {
	node := ObjectSchema(Prop("a", StringSchema())).Require("a")

	got := Validate(mustJSON(t, `{"a":"x","b":1,"c":{"d":[1,2]}}`), node, "")
	assert.Empty(t, got)
}

func TestValidate_InapplicableFieldsIgnored(t *testing.T) {
	min := 3
	lo := 1.0
	node := &Node{
		Kind:     KindObject,
		Pattern:  "^never$",
		MinItems: &min,
		Minimum:  &lo,
		Items:    StringSchema(),
	}
	assert.Empty(t, Validate(mustJSON(t, `{"k":[1]}`), node, ""))

	str := &Node{Kind: KindString, Required: []string{"x"}, Properties: []Property{Prop("x", IntegerSchema())}}
	assert.Empty(t, Validate(String("plain"), str, ""))
}

func TestValidate_NilSchema(t *testing.T) {
	assert.Empty(t, Validate(mustJSON(t, `{"a":1}`), nil, ""))
}

func TestValidate_PropertiesInDeclaredOrder(t *testing.T) {
	node := ObjectSchema(
		Prop("z", StringSchema()),
		Prop("a", StringSchema()),
		Prop("m", StringSchema()),
	)

	got := Validate(mustJSON(t, `{"a":1,"m":2,"z":3}`), node, "")
	assert.Equal(t, []string{"z", "a", "m"}, got.Paths())
}

func TestValidate_Deterministic(t *testing.T) {
	node := ObjectSchema(
		Prop("a", StringSchema()),
		Prop("b", ArraySchema(IntegerSchema().WithMaximum(2))),
		Prop("c", ObjectSchema().Require("x", "y")),
	).Require("a", "d")
	doc := mustJSON(t, `{"a":1,"b":[1,2,3,4],"c":{}}`)

	first := Validate(doc, node, "")
	require.NotEmpty(t, first)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Validate(doc, node, ""))
	}
}

func TestValidate_DoesNotMutateInput(t *testing.T) {
	node := ObjectSchema(Prop("a", ArraySchema(StringSchema()))).Require("b")
	doc := mustJSON(t, `{"a":["x", 1]}`)
	before := doc.Interface()

	_ = Validate(doc, node, "")

	assert.Equal(t, before, doc.Interface())
}

func TestViolations_Error(t *testing.T) {
	var none Violations
	assert.NoError(t, none.Err())

	one := Violations{{Path: "a", Message: "required", Code: CodeRequired}}
	assert.EqualError(t, one.Err(), "a: required")
	assert.True(t, one.Has("a"))
	assert.False(t, one.Has("b"))

	two := append(one, Violation{Message: "expected object", Code: CodeKind})
	assert.Contains(t, two.Error(), "2 violations")
	assert.Contains(t, two.Error(), "2. expected object")
}

func TestJoinPath(t *testing.T) {
	assert.Equal(t, "a", JoinKey("", "a"))
	assert.Equal(t, "a.b", JoinKey("a", "b"))
	assert.Equal(t, "[0]", JoinIndex("", 0))
	assert.Equal(t, "items[2].price", JoinKey(JoinIndex("items", 2), "price"))
}
