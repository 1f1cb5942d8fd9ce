package models

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrInvalidParent = errors.New("invalid parent id")

// Parent is either the root of a user's tree or a reference to a folder record.
// The zero value is Root. It is persisted and rendered as 0 for Root and as an
// ObjectID (hex string in JSON) for a folder.
type Parent struct {
	folder primitive.ObjectID
}

func Root() Parent { return Parent{} }

func FolderRef(id primitive.ObjectID) Parent { return Parent{folder: id} }

func (p Parent) IsRoot() bool { return p.folder.IsZero() }

// FolderID returns the referenced folder and false for Root.
func (p Parent) FolderID() (primitive.ObjectID, bool) {
	return p.folder, !p.folder.IsZero()
}

func (p Parent) String() string {
	if p.IsRoot() {
		return "0"
	}
	return p.folder.Hex()
}

// ParseParent accepts the shapes clients send for a parent: nil, 0, "0" and ""
// mean Root; a 24-char hex string references a folder.
func ParseParent(v any) (Parent, error) {
	switch t := v.(type) {
	case nil:
		return Root(), nil
	case Parent:
		return t, nil
	case float64:
		if t == 0 {
			return Root(), nil
		}
	case int:
		if t == 0 {
			return Root(), nil
		}
	case json.Number:
		if n, err := t.Int64(); err == nil && n == 0 {
			return Root(), nil
		}
	case string:
		if t == "" || t == "0" {
			return Root(), nil
		}
		id, err := primitive.ObjectIDFromHex(t)
		if err != nil {
			return Root(), fmt.Errorf("%w: %q", ErrInvalidParent, t)
		}
		return FolderRef(id), nil
	}
	return Root(), fmt.Errorf("%w: %v", ErrInvalidParent, v)
}

func (p Parent) MarshalJSON() ([]byte, error) {
	if p.IsRoot() {
		return []byte("0"), nil
	}
	return json.Marshal(p.folder.Hex())
}

func (p *Parent) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseParent(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p Parent) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if p.IsRoot() {
		return bson.MarshalValue(int32(0))
	}
	return bson.MarshalValue(p.folder)
}

func (p *Parent) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.ObjectID:
		if len(data) != 12 {
			return fmt.Errorf("%w: objectid of %d bytes", ErrInvalidParent, len(data))
		}
		var id primitive.ObjectID
		copy(id[:], data)
		*p = FolderRef(id)
		return nil
	case bsontype.Int32, bsontype.Int64, bsontype.Double, bsontype.Null, bsontype.Undefined:
		*p = Root()
		return nil
	case bsontype.String:
		var s string
		raw := bson.RawValue{Type: t, Value: data}
		if err := raw.Unmarshal(&s); err != nil {
			return err
		}
		parsed, err := ParseParent(s)
		if err != nil {
			return err
		}
		*p = parsed
		return nil
	}
	return fmt.Errorf("%w: bson type %s", ErrInvalidParent, t)
}

// FilterValue is the value to match parentId against in store queries.
func (p Parent) FilterValue() any {
	if p.IsRoot() {
		return 0
	}
	return p.folder
}
