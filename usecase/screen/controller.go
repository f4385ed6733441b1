package screen

import (
	"context"
	"fmt"
)

// Screens builds the four demo screens, in menu order.
func Screens(cfg Config) []ImageAdjustmentScreen {
	return []ImageAdjustmentScreen{
		NewZoomPanPinch(cfg.ZoomPanPinch),
		NewCropper(cfg.Cropper),
		NewAvatar(cfg.Avatar),
		NewMediumZoom(cfg.MediumZoom),
	}
}

// Controller is the screen switcher: it holds the selected screen's session and
// forwards events to it. Going back drops the session.
type Controller struct {
	screens map[Variant]ImageAdjustmentScreen
	order   []Variant
	opts    Options

	current *Session
}

func NewController(opts Options, screens ...ImageAdjustmentScreen) *Controller {
	c := &Controller{
		screens: make(map[Variant]ImageAdjustmentScreen, len(screens)),
		opts:    opts,
	}
	for _, s := range screens {
		if _, ok := c.screens[s.Variant()]; ok {
			continue
		}
		c.screens[s.Variant()] = s
		c.order = append(c.order, s.Variant())
	}
	return c
}

func (c *Controller) Variants() []Variant {
	return append([]Variant(nil), c.order...)
}

func (c *Controller) Lookup(v Variant) (ImageAdjustmentScreen, error) {
	s, ok := c.screens[v]
	if !ok {
		return nil, fmt.Errorf("%w: `%v`", ErrUnknownVariant, v)
	}
	return s, nil
}

// NewSession starts a session of the given screen without selecting it.
func (c *Controller) NewSession(v Variant) (*Session, error) {
	s, err := c.Lookup(v)
	if err != nil {
		return nil, err
	}
	return NewSession(s, c.opts), nil
}

// Select opens a screen with a fresh session.
func (c *Controller) Select(v Variant) (*Session, error) {
	session, err := c.NewSession(v)
	if err != nil {
		return nil, err
	}
	c.current = session
	return session, nil
}

// Back returns to the screen menu.
func (c *Controller) Back() {
	c.current = nil
}

// Current is nil while on the menu.
func (c *Controller) Current() *Session {
	return c.current
}

func (c *Controller) Dispatch(ctx context.Context, e Event) (*Result, error) {
	if c.current == nil {
		return nil, ErrNoScreen
	}
	return c.current.Dispatch(ctx, e)
}
