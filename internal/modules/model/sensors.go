package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

var ErrInvalidSensors = errors.New("invalid sensors")

// SensorProps holds the loosely typed properties of one sensor
// (unit, range, channel, ...). Values are strings, numbers, bools or null.
type SensorProps map[string]interface{}

// Sensors is an insertion-ordered map of sensor name to properties.
// Order is kept through JSON and BSON round trips.
type Sensors struct {
	keys   []string
	values map[string]SensorProps
}

func NewSensors() Sensors {
	return Sensors{values: map[string]SensorProps{}}
}

// Set adds or replaces a sensor, keeping its original position on replace.
func (s *Sensors) Set(name string, props SensorProps) {
	if s.values == nil {
		s.values = map[string]SensorProps{}
	}
	if _, ok := s.values[name]; !ok {
		s.keys = append(s.keys, name)
	}
	s.values[name] = props
}

func (s Sensors) Get(name string) (SensorProps, bool) {
	p, ok := s.values[name]
	return p, ok
}

func (s Sensors) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

func (s Sensors) Len() int { return len(s.keys) }

func (s Sensors) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range s.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(s.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *Sensors) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*s = NewSensors()
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("%w: expected object", ErrInvalidSensors)
	}

	out := NewSensors()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := keyTok.(string)

		var raw map[string]interface{}
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("%w: sensor %q: %v", ErrInvalidSensors, name, err)
		}
		props, err := scalarProps(name, raw)
		if err != nil {
			return err
		}
		out.Set(name, props)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*s = out
	return nil
}

func scalarProps(sensor string, raw map[string]interface{}) (SensorProps, error) {
	props := make(SensorProps, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil, string, bool, int, int32, int64, float64:
			props[k] = val
		case json.Number:
			if i, err := val.Int64(); err == nil {
				props[k] = i
			} else if f, err := val.Float64(); err == nil {
				props[k] = f
			} else {
				return nil, fmt.Errorf("%w: sensor %q property %q: %v", ErrInvalidSensors, sensor, k, err)
			}
		default:
			return nil, fmt.Errorf("%w: sensor %q property %q must be a scalar", ErrInvalidSensors, sensor, k)
		}
	}
	return props, nil
}

func (s Sensors) MarshalBSONValue() (bsontype.Type, []byte, error) {
	doc := make(bson.D, 0, len(s.keys))
	for _, k := range s.keys {
		doc = append(doc, bson.E{Key: k, Value: map[string]interface{}(s.values[k])})
	}
	return bson.MarshalValue(doc)
}

func (s *Sensors) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	out := NewSensors()
	if t == bson.TypeNull || t == bson.TypeUndefined {
		*s = out
		return nil
	}
	if t != bson.TypeEmbeddedDocument {
		return fmt.Errorf("%w: unexpected bson type %s", ErrInvalidSensors, t)
	}

	elems, err := bson.Raw(data).Elements()
	if err != nil {
		return err
	}
	for _, e := range elems {
		var raw map[string]interface{}
		if err := e.Value().Unmarshal(&raw); err != nil {
			return fmt.Errorf("%w: sensor %q: %v", ErrInvalidSensors, e.Key(), err)
		}
		props, err := scalarProps(e.Key(), raw)
		if err != nil {
			return err
		}
		out.Set(e.Key(), props)
	}
	*s = out
	return nil
}
