package httpserver

import (
	"errors"
	"net/http"

	"github.com/avatarctic/live-catalog/internal/core/domain/product"
	"github.com/labstack/echo/v4"
)

// Reads may carry a "v" query parameter as a cache-buster. Its value is
// deliberately never inspected; it exists only to defeat intermediary HTTP
// caches between the browser and this server.

func (s *Server) listProducts(c echo.Context) error {
	items, err := s.productSvc.ListProducts(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch products")
	}
	return c.JSON(http.StatusOK, items)
}

func (s *Server) getProduct(c echo.Context) error {
	rec, err := s.productSvc.GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.productError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (s *Server) createProduct(c echo.Context) error {
	var req product.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	created, err := s.productSvc.CreateProduct(c.Request().Context(), &req)
	if err != nil {
		return s.productError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (s *Server) updateProduct(c echo.Context) error {
	var req product.UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	updated, err := s.productSvc.UpdateProduct(c.Request().Context(), c.Param("id"), &req)
	if err != nil {
		return s.productError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Product updated successfully",
		"product": updated,
	})
}

func (s *Server) deleteProduct(c echo.Context) error {
	deleted, err := s.productSvc.DeleteProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.productError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Product deleted successfully",
		"product": deleted,
	})
}

func (s *Server) refreshProducts(c echo.Context) error {
	count, err := s.productSvc.RefreshCache(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to refresh products cache")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Cache refreshed",
		"count":   count,
	})
}

// productError maps the domain error taxonomy onto HTTP statuses.
func (s *Server) productError(err error) error {
	var verr *product.ValidationError
	switch {
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusBadRequest, verr.Error())
	case errors.Is(err, product.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
