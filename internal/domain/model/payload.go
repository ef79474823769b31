package model

// Record is a single decoded JSON object from the Linkwarden API.
type Record = map[string]any

// PayloadShape classifies how an upstream response carries its list.
type PayloadShape int

const (
	// ShapeUnrecognized means no list could be found; Items is empty.
	ShapeUnrecognized PayloadShape = iota
	// ShapeList is a bare JSON array.
	ShapeList
	// ShapeWrapped is an object holding the array under one of the wrapper keys.
	ShapeWrapped
)

// String returns a human-readable name for the shape.
func (s PayloadShape) String() string {
	switch s {
	case ShapeList:
		return "list"
	case ShapeWrapped:
		return "wrapped"
	default:
		return "unrecognized"
	}
}

// wrapperKeys are probed in order; the first one holding an array wins.
var wrapperKeys = []string{"response", "data", "result", "items", "collections", "links"}

// Payload is an upstream response resolved into one of the known shapes.
type Payload struct {
	Shape PayloadShape
	Key   string // wrapper key for ShapeWrapped, empty otherwise
	Items []Record
}

// ParsePayload resolves a decoded JSON value into a Payload. It never fails:
// anything without a recognizable list becomes ShapeUnrecognized.
func ParsePayload(v any) Payload {
	switch t := v.(type) {
	case []any:
		return Payload{Shape: ShapeList, Items: objectsOnly(t)}
	case map[string]any:
		for _, key := range wrapperKeys {
			if list, ok := t[key].([]any); ok {
				return Payload{Shape: ShapeWrapped, Key: key, Items: objectsOnly(list)}
			}
		}
	case []Record:
		items := make([]Record, 0, len(t))
		for _, r := range t {
			if r != nil {
				items = append(items, r)
			}
		}
		return Payload{Shape: ShapeList, Items: items}
	}
	return Payload{Shape: ShapeUnrecognized, Items: []Record{}}
}

// Normalize returns the ordered objects carried by an upstream payload.
// Callers distinguish "no data" from failures through the gateway error, not here.
func Normalize(v any) []Record {
	return ParsePayload(v).Items
}

func objectsOnly(list []any) []Record {
	out := make([]Record, 0, len(list))
	for _, el := range list {
		if obj, ok := el.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}
