package validator

import (
	"log"
	"time"

	"cargomarket_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules регистрирует все кастомные функции валидации в
// переданном экземпляре валидатора.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			// Приложение не должно запускаться без своих правил
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-listing-kind", oneOfString(models.ListingKinds))
	mustRegister("is-listing-status", oneOfString(models.ListingStatuses))
	mustRegister("is-offer-status", oneOfString(models.OfferStatuses))
	mustRegister("is-transport-mode", oneOfString(models.TransportModes))
	mustRegister("is-pricing-unit", oneOfString(models.PricingUnits))
	mustRegister("is-news-category", oneOfString(models.NewsCategories))
	mustRegister("is-currency", oneOfString(models.Currencies))
	mustRegister("is-visibility", oneOfString([]models.ListingVisibility{
		models.VisibilityPublic, models.VisibilityPrivate,
	}))

	// 'future': дата строго позже текущего момента
	mustRegister("future", validateFuture)
}

// oneOfString строит правило по списку допустимых значений enum-типа.
// Пустое значение пропускается, для него есть 'required'.
func oneOfString[T ~string](allowed []T) validator.Func {
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[string(a)] = struct{}{}
	}
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}
		_, ok := set[value]
		return ok
	}
}

func validateFuture(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	if t.IsZero() {
		return true
	}
	return t.After(time.Now())
}
