package delta_test

import (
	"testing"

	. "github.com/cozy/quill-go/delta"
	"github.com/stretchr/testify/assert"
)

func TestComposeAttributes(t *testing.T) {
	attributes := AttributeMap{"bold": true, "color": "red"}

	assert.Equal(t, attributes, ComposeAttributes(nil, attributes, false))
	assert.Equal(t, attributes, ComposeAttributes(attributes, nil, false))
	assert.Nil(t, ComposeAttributes(nil, nil, false))
	assert.Equal(t, AttributeMap{"bold": true, "color": "red", "italic": true},
		ComposeAttributes(attributes, AttributeMap{"italic": true}, false))
	assert.Equal(t, AttributeMap{"bold": false, "color": "blue"},
		ComposeAttributes(attributes, AttributeMap{"bold": false, "color": "blue"}, false))
	assert.Equal(t, AttributeMap{"color": "red"},
		ComposeAttributes(attributes, AttributeMap{"bold": nil}, false))
	assert.Nil(t, ComposeAttributes(attributes, AttributeMap{"bold": nil, "color": nil}, false))
	assert.Equal(t, AttributeMap{"bold": nil, "color": "red"},
		ComposeAttributes(attributes, AttributeMap{"bold": nil}, true))
}

func TestDiffAttributes(t *testing.T) {
	format := AttributeMap{"bold": true, "color": "red"}

	assert.Equal(t, format, DiffAttributes(nil, format))
	assert.Equal(t, AttributeMap{"bold": nil, "color": nil}, DiffAttributes(format, nil))
	assert.Nil(t, DiffAttributes(format, format))
	assert.Equal(t, AttributeMap{"italic": true}, DiffAttributes(format, AttributeMap{"bold": true, "color": "red", "italic": true}))
	assert.Equal(t, AttributeMap{"color": "blue"}, DiffAttributes(format, AttributeMap{"bold": true, "color": "blue"}))
	// numbers compare by value
	assert.Nil(t, DiffAttributes(AttributeMap{"indent": 1}, AttributeMap{"indent": float64(1)}))
}

func TestInvertAttributes(t *testing.T) {
	assert.Nil(t, InvertAttributes(nil, AttributeMap{"bold": true}))
	assert.Equal(t, AttributeMap{"bold": nil}, InvertAttributes(AttributeMap{"bold": true}, nil))
	assert.Equal(t, AttributeMap{"bold": true}, InvertAttributes(AttributeMap{"bold": nil}, AttributeMap{"bold": true}))
	assert.Equal(t, AttributeMap{"color": "blue"},
		InvertAttributes(AttributeMap{"color": "red"}, AttributeMap{"color": "blue"}))
}

func TestValueEqual(t *testing.T) {
	assert.True(t, ValueEqual(1, 1.0))
	assert.True(t, ValueEqual(Embed{"image": "a"}, map[string]interface{}{"image": "a"}))
	assert.True(t, ValueEqual(
		map[string]interface{}{"row": "r", "cell": "c"},
		AttributeMap{"row": "r", "cell": "c"},
	))
	assert.False(t, ValueEqual("1", 1))
	assert.False(t, ValueEqual(nil, false))
}
