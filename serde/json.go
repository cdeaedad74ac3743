package serde

import "encoding/json"

// JsonParser decodes JSON documents into T.
type JsonParser[T any] struct {
}

func (jp JsonParser[T]) Decode(data []byte) (T, error) {
	var t T
	err := json.Unmarshal(data, &t)
	return t, err
}

// JsonEncoder encodes T as JSON. With Indent set the output is indented by
// that string and ends with a newline, which suits files people may read.
type JsonEncoder[T any] struct {
	Indent string
}

func (je JsonEncoder[T]) Encode(data T) ([]byte, error) {
	if je.Indent == "" {
		return json.Marshal(data)
	}
	out, err := json.MarshalIndent(data, "", je.Indent)
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}
