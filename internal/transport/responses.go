package transport

import (
	"errors"
	"net/http"

	"priceboard/internal/domain"
	"priceboard/internal/middleware"
	"priceboard/internal/repository"
	"priceboard/internal/service"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PriceResponse is a price row plus its derived effective price.
type PriceResponse struct {
	domain.Price
	Effective decimal.Decimal `json:"effective"`
}

// ProductResponse is a product with its price variants, newest first.
type ProductResponse struct {
	domain.Product
	Prices []PriceResponse `json:"prices"`
}

// CategoryResponse is a category with its ordered products. ProductCount
// feeds the admin list; the public list carries it too, harmlessly.
type CategoryResponse struct {
	domain.Category
	ProductCount int               `json:"product_count"`
	Products     []ProductResponse `json:"products"`
}

func newTreeResponse(tree domain.Tree) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(tree))
	for _, category := range tree {
		node := CategoryResponse{
			Category:     category.Category,
			ProductCount: len(category.Products),
			Products:     make([]ProductResponse, 0, len(category.Products)),
		}
		for _, product := range category.Products {
			pr := ProductResponse{
				Product: product.Product,
				Prices:  make([]PriceResponse, 0, len(product.Prices)),
			}
			for _, price := range product.Prices {
				pr.Prices = append(pr.Prices, PriceResponse{
					Price:     price,
					Effective: price.EffectivePrice(),
				})
			}
			node.Products = append(node.Products, pr)
		}
		out = append(out, node)
	}
	return out
}

// respondServiceError maps engine errors onto the wire: validation
// problems are 400, unknown references 404, stale reorders 409, and
// anything unexpected becomes a logged 500 with a generic message tied to
// the failed action.
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error, action string) {
	if ve, ok := service.AsValidationError(err); ok {
		middleware.RespondWithValidationErrors(w, []middleware.ValidationError{
			{Field: ve.Field, Message: ve.Message},
		})
		return
	}

	switch {
	case errors.Is(err, repository.ErrCategoryNotFound),
		errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrPriceNotFound),
		errors.Is(err, service.ErrInvalidReference):
		middleware.RespondWithError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, repository.ErrCategoryAlreadyExists),
		errors.Is(err, service.ErrDuplicateReference),
		errors.Is(err, service.ErrReorderTooLarge):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, service.ErrPartialReorder),
		errors.Is(err, repository.ErrReorderConflict):
		middleware.RespondWithError(w, http.StatusConflict, err.Error()+"; refresh and try again")

	default:
		logger.Error("Unexpected error", zap.String("action", action), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, action+" failed")
	}
}
