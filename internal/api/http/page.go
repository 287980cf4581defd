package httpapi

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/participant-map/internal/atlas"
)

//go:embed templates/map.html
var content embed.FS

var pageTmpl = template.Must(template.New("map.html").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).ParseFS(content, "templates/map.html"))

// pageData is what the map page template renders.
type pageData struct {
	View      atlas.MapView
	Counts    []atlas.CityStat
	Total     int
	LoadError string
	Snapshot  string
}

// mapPage renders the map together with the participant table. The map
// itself is drawn in the browser once it signals it is ready.
func (p *Presenter) mapPage(c *fiber.Ctx) error {
	snap, _ := p.current()
	if notModified(c, snap) {
		return c.SendStatus(fiber.StatusNotModified)
	}

	var buf bytes.Buffer
	err := pageTmpl.Execute(&buf, pageData{
		View:      p.view,
		Counts:    snap.Aggregation.Counts,
		Total:     snap.Aggregation.Total(),
		LoadError: snap.LoadError,
		Snapshot:  snap.ID,
	})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to render map page")
	}

	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}
