package handler

import (
	"errors"
	"html/template"
	"log"
	"net/http"
	"strconv"

	"github.com/aman-churiwal/devtools-profiler/internal/models"
	"github.com/aman-churiwal/devtools-profiler/internal/service"
	"github.com/gin-gonic/gin"
)

// CatalogHandler is the demo storefront: an HTML page and a JSON API over the
// same products.
type CatalogHandler struct {
	catalog *service.CatalogService
}

func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) Page(c *gin.Context) {
	page, err := h.catalog.List(c.Request.Context(), queryInt(c, "page", 1), queryInt(c, "page_size", service.DefaultPageSize))
	if err != nil {
		log.Printf("[%s] Failed to load catalog: %v", c.GetString("request_id"), err)
		c.String(http.StatusInternalServerError, "Failed to load catalog")
		return
	}

	c.Set("customer_group", "guest")
	c.HTML(http.StatusOK, "catalog.html", page)
}

func (h *CatalogHandler) List(c *gin.Context) {
	page, err := h.catalog.List(c.Request.Context(), queryInt(c, "page", 1), queryInt(c, "page_size", service.DefaultPageSize))
	if err != nil {
		log.Printf("[%s] Failed to list products: %v", c.GetString("request_id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list products"})
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *CatalogHandler) Get(c *gin.Context) {
	product, err := h.catalog.Get(c.Request.Context(), c.Param("sku"))
	if errors.Is(err, service.ErrProductNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	if err != nil {
		log.Printf("[%s] Failed to load product: %v", c.GetString("request_id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load product"})
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *CatalogHandler) Create(c *gin.Context) {
	var req struct {
		SKU         string `json:"sku" binding:"required"`
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		PriceCents  int64  `json:"price_cents" binding:"required,gt=0"`
		Stock       int    `json:"stock"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product := models.Product{
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Stock:       req.Stock,
	}

	if err := h.catalog.Create(c.Request.Context(), &product); err != nil {
		log.Printf("[%s] Failed to create product: %v", c.GetString("request_id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	c.JSON(http.StatusCreated, product)
}

func queryInt(c *gin.Context, name string, def int) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return n
}

// Templates holds the storefront's HTML templates
func Templates() *template.Template {
	return template.Must(template.New("catalog.html").Funcs(template.FuncMap{
		"price": func(cents int64) string {
			return strconv.FormatFloat(float64(cents)/100, 'f', 2, 64)
		},
	}).Parse(catalogTemplate))
}

const catalogTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <title>Catalog</title>
</head>
<body>
    <h1>Catalog</h1>
    <p>{{.Total}} products</p>
    <ul>
    {{- range .Products}}
        <li><strong>{{.Name}}</strong> ({{.SKU}}) ${{price .PriceCents}}<br>{{.Description}}</li>
    {{- end}}
    </ul>
</body>
</html>
`
