package model

import "github.com/cozy/quill-go/delta"

// FormatsAt returns the formats applying to the range [index,
// index+length): the attributes of the lines it covers and the formats of
// its text. Formats missing from part of the range are left out; those
// with several values give the list of the values.
//
// For a collapsed range, the text formats are those of the character
// before the position on the same line, or after it at a line start.
func (t *Tree) FormatsAt(index, length int) (delta.AttributeMap, error) {
	if index < 0 || index+length > t.Length() {
		return nil, ErrOutOfRange
	}
	var lineFormats, leafFormats []delta.AttributeMap
	offset := 0
	for _, l := range t.Lines() {
		end := offset + l.Len()
		inRange := end > index && (offset < index+length || (length == 0 && offset <= index))
		if offset > index+length {
			break
		}
		if !inRange {
			offset = end
			continue
		}
		if l.Kind == Block {
			lineFormats = append(lineFormats, l.LineAttributes())
		} else {
			leafFormats = append(leafFormats, l.Formats)
		}
		pos := offset
		for i, leaf := range l.Children {
			leafEnd := pos + leaf.Len()
			switch {
			case length > 0 && leafEnd > index && pos < index+length:
				leafFormats = append(leafFormats, leaf.Formats)
			case length == 0 && index > offset && leafEnd >= index && pos < index:
				leafFormats = append(leafFormats, leaf.Formats)
			case length == 0 && index == offset && i == 0:
				leafFormats = append(leafFormats, leaf.Formats)
			}
			pos = leafEnd
		}
		offset = end
	}
	result := delta.AttributeMap{}
	for k, v := range combineFormats(lineFormats) {
		result[k] = v
	}
	for k, v := range combineFormats(leafFormats) {
		result[k] = v
	}
	return result, nil
}

// combineFormats keeps the formats set on all the given maps.
func combineFormats(all []delta.AttributeMap) delta.AttributeMap {
	if len(all) == 0 {
		return nil
	}
	combined := delta.AttributeMap{}
	for k, v := range all[0] {
		combined[k] = v
	}
	for _, formats := range all[1:] {
		for name, value := range combined {
			other, ok := formats[name]
			if !ok || other == nil {
				delete(combined, name)
				continue
			}
			combined[name] = addValue(value, other)
		}
		if len(combined) == 0 {
			break
		}
	}
	return combined
}

func addValue(values, v interface{}) interface{} {
	list, isList := values.([]interface{})
	if !isList {
		if delta.ValueEqual(values, v) {
			return values
		}
		return []interface{}{values, v}
	}
	for _, existing := range list {
		if delta.ValueEqual(existing, v) {
			return list
		}
	}
	return append(list, v)
}
