package chat_dto

import (
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type SendMessageRequest struct {
	Content     string `json:"content" validate:"required,max=4000"`
	MessageType string `json:"message_type" validate:"omitempty,oneof=text image file voice poll announcement event"`
	ReplyTo     string `json:"reply_to" validate:"omitempty,object_id"`
}

type GetMessagesRequest struct {
	Before string `json:"before" validate:"omitempty,object_id"`
	Limit  int    `json:"limit" validate:"omitempty,min=1,max=100"`
}

// ObjectIDValidator registers the object_id tag for mongo id parameters.
func ObjectIDValidator(v *validator.Validate) error {
	return v.RegisterValidation("object_id", func(fl validator.FieldLevel) bool {
		_, err := bson.ObjectIDFromHex(fl.Field().String())
		return err == nil
	})
}
