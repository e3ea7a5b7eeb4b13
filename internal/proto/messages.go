package proto

import (
	"google.golang.org/protobuf/types/known/structpb"
)

// Field names of the request and reply structs.
const (
	FieldStudentID         = "studentId"
	FieldPassword          = "password"
	FieldEncryptedPassword = "encryptedPassword"
	FieldSessionToken      = "sessionToken"
	FieldPasswordExpired   = "passwordExpired"
	FieldAccessToken       = "accessToken"
	FieldError             = "error"
	FieldKind              = "kind"
	FieldMessage           = "message"
)

// Reply is the decoded form of a SignIn or RefreshSession reply. Exactly
// one of the result fields and the Error fields is populated.
type Reply struct {
	SessionToken      string
	EncryptedPassword string
	PasswordExpired   bool
	AccessToken       string

	ErrorKind    string
	ErrorMessage string
}

// Failed reports whether the reply carries an error.
func (r Reply) Failed() bool { return r.ErrorKind != "" }

func NewSignInRequest(studentID, password string) *structpb.Struct {
	return stringStruct(map[string]string{FieldStudentID: studentID, FieldPassword: password})
}

func NewRefreshSessionRequest(studentID, encryptedPassword string) *structpb.Struct {
	return stringStruct(map[string]string{FieldStudentID: studentID, FieldEncryptedPassword: encryptedPassword})
}

func stringStruct(m map[string]string) *structpb.Struct {
	s := &structpb.Struct{Fields: make(map[string]*structpb.Value, len(m))}
	for k, v := range m {
		s.Fields[k] = structpb.NewStringValue(v)
	}
	return s
}

// String returns the string field name of s, or "" when absent or of
// another type.
func String(s *structpb.Struct, name string) string {
	if s == nil {
		return ""
	}
	v, ok := s.GetFields()[name]
	if !ok {
		return ""
	}
	sv, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return ""
	}
	return sv.StringValue
}

// EncodeReply builds the wire struct for r.
func EncodeReply(r Reply) *structpb.Struct {
	if r.Failed() {
		return &structpb.Struct{Fields: map[string]*structpb.Value{
			FieldError: structpb.NewStructValue(stringStruct(map[string]string{
				FieldKind:    r.ErrorKind,
				FieldMessage: r.ErrorMessage,
			})),
		}}
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldSessionToken:      structpb.NewStringValue(r.SessionToken),
		FieldEncryptedPassword: structpb.NewStringValue(r.EncryptedPassword),
		FieldPasswordExpired:   structpb.NewBoolValue(r.PasswordExpired),
		FieldAccessToken:       structpb.NewStringValue(r.AccessToken),
	}}
}

// DecodeReply is the inverse of EncodeReply.
func DecodeReply(s *structpb.Struct) Reply {
	if e := s.GetFields()[FieldError].GetStructValue(); e != nil {
		return Reply{ErrorKind: String(e, FieldKind), ErrorMessage: String(e, FieldMessage)}
	}
	return Reply{
		SessionToken:      String(s, FieldSessionToken),
		EncryptedPassword: String(s, FieldEncryptedPassword),
		PasswordExpired:   s.GetFields()[FieldPasswordExpired].GetBoolValue(),
		AccessToken:       String(s, FieldAccessToken),
	}
}
