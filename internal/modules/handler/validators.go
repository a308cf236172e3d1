package handler

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/model"
)

var registerOnce sync.Once

// RegisterValidators installs the custom binding tags used by request
// structs in this package. Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("test_status", func(fl validator.FieldLevel) bool {
				return model.TestStatus(fl.Field().String()).Valid()
			})
		}
	})
}
