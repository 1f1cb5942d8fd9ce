package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password" json:"-"`
}

type FileType string

const (
	TypeFolder FileType = "folder"
	TypeFile   FileType = "file"
	TypeImage  FileType = "image"
)

func (t FileType) Valid() bool {
	switch t {
	case TypeFolder, TypeFile, TypeImage:
		return true
	}
	return false
}

// File is a folder, file or image record. LocalPath is nil for folders only.
type File struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Name      string             `bson:"name" json:"name"`
	Type      FileType           `bson:"type" json:"type"`
	IsPublic  bool               `bson:"isPublic" json:"isPublic"`
	ParentID  Parent             `bson:"parentId" json:"parentId"`
	LocalPath *string            `bson:"localPath" json:"localPath,omitempty"`
}

func (f *File) IsFolder() bool { return f.Type == TypeFolder }

// OwnedBy reports whether userID owns the record. The zero id owns nothing.
func (f *File) OwnedBy(userID primitive.ObjectID) bool {
	return !userID.IsZero() && f.UserID == userID
}
