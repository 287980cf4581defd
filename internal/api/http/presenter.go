package httpapi

import (
	"sync"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/participant-map/internal/atlas"
	"github.com/i474232898/participant-map/internal/spatial"
)

// extentPadding is added around the data extent, in degrees.
const extentPadding = 0.5

// Presenter hands the current snapshot and the map configuration to the
// browser. It is created once at startup and passed to RegisterRoutes.
type Presenter struct {
	service *atlas.Service
	view    atlas.MapView

	mu      sync.Mutex
	indexID string
	index   *spatial.Index
}

// NewPresenter creates a new Presenter.
func NewPresenter(service *atlas.Service, view atlas.MapView) *Presenter {
	return &Presenter{
		service: service,
		view:    view,
	}
}

// current returns the latest snapshot along with a spatial index over its
// cities. The index is rebuilt only when the snapshot changes.
func (p *Presenter) current() (atlas.Snapshot, *spatial.Index) {
	snap := p.service.Current()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.index == nil || p.indexID != snap.ID {
		p.index = spatial.NewIndex(snap.Aggregation.Counts)
		p.indexID = snap.ID
	}
	return snap, p.index
}

// notModified sets the snapshot ETag and reports whether the client copy is
// still current.
func notModified(c *fiber.Ctx, snap atlas.Snapshot) bool {
	if snap.ID == "" {
		return false
	}
	etag := `"` + snap.ID + `"`
	c.Set(fiber.HeaderETag, etag)
	return c.Get(fiber.HeaderIfNoneMatch) == etag
}

// ErrorHandler renders every error as the JSON error envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}
