package lms

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/brightspark/core"
)

var (
	subscriptionStatusTag  = "subscription_status"
	subscriptionStatusText = "invalid subscription status"

	keyStageTag  = "key_stage"
	keyStageText = "invalid key stage"

	contentKindTag  = "content_kind"
	contentKindText = "invalid content type"
)

// InitValidators registers the entity validators and their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(subscriptionStatusTag, oneOfValidation(SubscriptionStatuses))
	core.RegisterCustomTranslation(validate, translator, subscriptionStatusTag, subscriptionStatusText)

	_ = validate.RegisterValidation(keyStageTag, oneOfValidation(KeyStages))
	core.RegisterCustomTranslation(validate, translator, keyStageTag, keyStageText)

	_ = validate.RegisterValidation(contentKindTag, oneOfValidation(ContentKinds))
	core.RegisterCustomTranslation(validate, translator, contentKindTag, contentKindText)
}

func oneOfValidation(choices []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return core.ContainsString(choices, fl.Field().String())
	}
}
