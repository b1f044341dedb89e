package handler

import (
	"net/http"

	"delipos/internal/menu"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// MenuHandler serves the static food-menu definitions the register UI
// renders: categories, option groups, and per-entry modifier lists.
type MenuHandler struct{}

func NewMenuHandler() *MenuHandler { return &MenuHandler{} }

type menuEntryView struct {
	Name            string                     `json:"name"`
	Price           decimal.Decimal            `json:"price"`
	Prices          map[string]decimal.Decimal `json:"prices,omitempty"`
	RequiresOptions bool                       `json:"requires_options"`
	OptionKind      string                     `json:"option_kind,omitempty"`
	ByWeight        bool                       `json:"by_weight,omitempty"`
	PerPound        *decimal.Decimal           `json:"per_pound,omitempty"`
	Modifiers       []menu.Modifier            `json:"modifiers,omitempty"`
}

type menuCategoryView struct {
	Name    string          `json:"name"`
	Entries []menuEntryView `json:"entries"`
}

// Get godoc
// @Summary Food menu definitions
// @Tags menu
// @Produce json
// @Router /v1/menu [get]
func (h *MenuHandler) Get(c *gin.Context) {
	categories := menu.DefaultMenu()
	out := make([]menuCategoryView, 0, len(categories))
	for _, cat := range categories {
		cv := menuCategoryView{Name: cat.Name}
		for _, e := range cat.Entries {
			ev := menuEntryView{
				Name:            e.Name,
				Price:           e.Price,
				Prices:          e.Prices,
				RequiresOptions: e.RequiresOptions,
				OptionKind:      string(e.OptionKind),
				ByWeight:        e.ByWeight,
				Modifiers:       menu.ModifiersFor(e.ModifierGroup),
			}
			if e.ByWeight {
				pp := e.PerPound
				ev.PerPound = &pp
			}
			cv.Entries = append(cv.Entries, ev)
		}
		out = append(out, cv)
	}
	c.JSON(http.StatusOK, gin.H{"categories": out})
}

// Options godoc
// @Summary Option group definition for a kind
// @Tags menu
// @Produce json
// @Param kind path string true "Option kind"
// @Router /v1/menu/options/{kind} [get]
func (h *MenuHandler) Options(c *gin.Context) {
	cfg, err := menu.ConfigFor(menu.OptionKind(c.Param("kind")))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cfg)
}
