package handler

import (
	"net/http"

	"stockwise/internal/middleware"
	"stockwise/internal/service"
	"stockwise/pkg/pagination"
	"stockwise/pkg/response"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	productService service.ProductService
	variantService service.VariantService
}

func NewProductHandler(productService service.ProductService, variantService service.VariantService) *ProductHandler {
	return &ProductHandler{productService: productService, variantService: variantService}
}

func (h *ProductHandler) RegisterRoutes(router *gin.RouterGroup, authMW *middleware.Auth) {
	products := router.Group("/api/products")
	products.Use(authMW.RequireRole())
	{
		products.POST("", h.CreateProduct)
		products.GET("", h.ListProducts)
		products.GET("/:id", h.GetProduct)
		products.PUT("/:id", h.UpdateProduct)
		products.DELETE("/:id", h.DeleteProduct)

		// :id is the product id; gin does not allow a differently named wildcard here
		products.POST("/:id/variants", h.CreateVariant)
		products.GET("/:id/variants", h.ListVariants)
	}
}

// CreateProduct creates a product
// @Summary      Create product
// @Tags         products
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateProductRequest  true  "Create Product Payload"
// @Success      201      {object}  response.Response{data=model.Product}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/products [post]
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(product))
}

// ListProducts handles retrieving a filtered page of products
// @Summary      List products
// @Description  Filters by name/SKU substring and category, newest first
// @Tags         products
// @Security     BearerAuth
// @Produce      json
// @Param        search      query     string  false  "Case-insensitive match on name or SKU"
// @Param        categoryId  query     string  false  "Category ID"
// @Param        page        query     int     false  "Page number (default 1)"
// @Param        limit       query     int     false  "Number of items per page (default 20)"
// @Success      200         {object}  response.Response{data=[]model.Product}
// @Router       /api/products [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
	p := pagination.Parse(c)

	products, total, err := h.productService.ListProducts(c.Request.Context(), service.ListProductsParams{
		Search:     c.Query("search"),
		CategoryID: c.Query("categoryId"),
		Page:       p.Page,
		Limit:      p.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(products, p.Page, p.Limit, total))
}

// GetProduct returns a product with its category and variants
// @Summary      Get product
// @Tags         products
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  response.Response{data=model.Product}
// @Failure      404  {object}  response.Response
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.productService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(product))
}

// UpdateProduct updates an existing product's details
// @Summary      Update product
// @Tags         products
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Product ID"
// @Param        payload  body      service.UpdateProductRequest  true  "Update Product Payload"
// @Success      200      {object}  response.Response{data=model.Product}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/products/{id} [put]
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req service.UpdateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(product))
}

// DeleteProduct removes a product that has no variants
// @Summary      Delete product
// @Tags         products
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/products/{id} [delete]
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.productService.DeleteProduct(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Message("Product deleted successfully"))
}

// CreateVariant adds a variant to a product, with optional opening stock
// @Summary      Create variant
// @Tags         variants
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Product ID"
// @Param        payload  body      service.CreateVariantRequest  true  "Create Variant Payload"
// @Success      201      {object}  response.Response{data=model.ProductVariant}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/products/{id}/variants [post]
func (h *ProductHandler) CreateVariant(c *gin.Context) {
	var req service.CreateVariantRequest
	if !bindJSON(c, &req) {
		return
	}

	variant, err := h.variantService.CreateVariant(c.Request.Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(variant))
}

// ListVariants returns a product's variants with their inventory
// @Summary      List variants
// @Tags         variants
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  response.Response{data=[]model.ProductVariant}
// @Failure      404  {object}  response.Response
// @Router       /api/products/{id}/variants [get]
func (h *ProductHandler) ListVariants(c *gin.Context) {
	variants, err := h.variantService.ListVariants(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(variants))
}
