package httpapi

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/skip2/go-qrcode"

	"github.com/i474232898/participant-map/internal/atlas"
	"github.com/i474232898/participant-map/internal/dataset"
	"github.com/i474232898/participant-map/internal/spatial"
	"github.com/i474232898/participant-map/internal/store"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, p *Presenter) {
	app.Get("/", p.mapPage)
	app.Get("/qr.png", qrCode)

	app.Get("/health", func(c *fiber.Ctx) error {
		snap := p.service.Current()
		return c.JSON(fiber.Map{
			"status":   "ok",
			"service":  "participant-map",
			"snapshot": snap.ID,
			"degraded": snap.LoadError != "",
		})
	})

	v1 := app.Group("/api/v1")

	v1.Get("/map", func(c *fiber.Ctx) error {
		return c.JSON(p.view)
	})

	v1.Get("/participants.geojson", func(c *fiber.Ctx) error {
		snap, _ := p.current()
		if notModified(c, snap) {
			return c.SendStatus(fiber.StatusNotModified)
		}
		if err := c.JSON(snap.Aggregation.Features); err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, "application/geo+json")
		return nil
	})

	v1.Get("/cities", func(c *fiber.Ctx) error {
		snap, idx := p.current()

		counts := snap.Aggregation.Counts
		if raw := c.Query("bbox"); raw != "" {
			bounds, err := atlas.ParseBounds(raw)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid bbox: %v", err))
			}
			if counts, err = idx.Within(bounds); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
		} else if notModified(c, snap) {
			return c.SendStatus(fiber.StatusNotModified)
		}

		total := 0
		for _, cs := range counts {
			total += cs.Count
		}

		return c.JSON(fiber.Map{
			"snapshot": snap.ID,
			"total":    total,
			"cities":   counts,
		})
	})

	v1.Get("/cities/nearest", func(c *fiber.Ctx) error {
		var req nearestQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		_, idx := p.current()
		origin := dataset.Coordinates{req.Lng, req.Lat}

		results := make([]nearestCity, 0, req.K)
		for _, cs := range idx.Nearest(origin, req.K) {
			results = append(results, nearestCity{
				CityStat:   cs,
				DistanceKm: spatial.DistanceKm(origin, cs.Coordinates),
			})
		}

		return c.JSON(fiber.Map{
			"origin": origin,
			"cities": results,
		})
	})

	v1.Get("/extent", func(c *fiber.Ctx) error {
		snap, _ := p.current()

		points := make([]dataset.Coordinates, 0, len(snap.Aggregation.Features.Features))
		for _, f := range snap.Aggregation.Features.Features {
			points = append(points, f.Geometry.Coordinates)
		}

		bounds, ok := spatial.Extent(points, extentPadding)
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "no participant has a known position")
		}
		if notModified(c, snap) {
			return c.SendStatus(fiber.StatusNotModified)
		}
		return c.JSON(bounds)
	})

	v1.Get("/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snapshots, err := p.service.GetRange(req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no snapshots for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch snapshot history")
		}

		summaries := make([]atlas.SnapshotSummary, 0, len(snapshots))
		for _, s := range snapshots {
			summaries = append(summaries, s.Summary())
		}

		return c.JSON(fiber.Map{
			"from":      req.From,
			"to":        req.To,
			"snapshots": summaries,
		})
	})

	v1.Post("/reload", func(c *fiber.Ctx) error {
		snap, err := p.service.Reload(c.UserContext())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		c.Set(fiber.HeaderETag, `"`+snap.ID+`"`)
		return c.JSON(snap.Summary())
	})
}

type nearestCity struct {
	atlas.CityStat
	DistanceKm float64 `json:"distanceKm"`
}

// nearestQuery holds query parameters for the nearest-city lookup.
type nearestQuery struct {
	Lng float64 `validate:"gte=-180,lte=180"`
	Lat float64 `validate:"gte=-90,lte=90"`
	K   int     `validate:"gte=1,lte=50"`
}

func (q *nearestQuery) bind(c *fiber.Ctx) error {
	lngStr := c.Query("lng")
	latStr := c.Query("lat")
	if lngStr == "" || latStr == "" {
		return errors.New("lng and lat query parameters are required")
	}

	var err error
	if q.Lng, err = strconv.ParseFloat(lngStr, 64); err != nil {
		return fmt.Errorf("invalid lng: %w", err)
	}
	if q.Lat, err = strconv.ParseFloat(latStr, 64); err != nil {
		return fmt.Errorf("invalid lat: %w", err)
	}

	q.K = 5
	if kStr := c.Query("k"); kStr != "" {
		if q.K, err = strconv.Atoi(kStr); err != nil {
			return fmt.Errorf("invalid k: %w", err)
		}
	}
	return nil
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}

// qrQuery holds the link encoded by the QR endpoint.
type qrQuery struct {
	URL  string `validate:"required,url"`
	Size int    `validate:"gte=64,lte=1024"`
}

const qrSize = 256

// qrCode renders a PNG QR code pointing at the given URL, or at the map page.
func qrCode(c *fiber.Ctx) error {
	q := qrQuery{
		URL:  c.Query("url", c.BaseURL()+"/"),
		Size: c.QueryInt("size", qrSize),
	}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	png, err := qrcode.Encode(q.URL, qrcode.Medium, q.Size)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, fmt.Sprintf("failed to encode qr code: %v", err))
	}

	c.Type("png")
	return c.Send(png)
}
