package renderer

import (
	"github.com/JoeGuida/renderer/internal/hal"
)

// QueueFamily holds the family indices used for rendering and presentation.
// They are equal when one family does both.
type QueueFamily struct {
	Graphics     int
	Presentation int
}

func (q QueueFamily) Shared() bool {
	return q.Graphics == q.Presentation
}

// Unique lists each distinct family once, graphics first.
func (q QueueFamily) Unique() []int {
	if q.Shared() {
		return []int{q.Graphics}
	}
	return []int{q.Graphics, q.Presentation}
}

// ResolveQueueFamily scans the device's queue families in index order. A family
// that supports both graphics and presentation wins immediately; otherwise the
// first graphics family and the first presentation family are paired. The
// boolean is false when either role has no family.
func ResolveQueueFamily(instance hal.Instance, device hal.PhysicalDevice, surface hal.Surface) (QueueFamily, bool, error) {
	families, err := instance.QueueFamilies(device)
	if err != nil {
		return QueueFamily{}, false, markf(ErrQueueFamilyNotFound, err, "query queue families")
	}

	graphics, present := -1, -1
	for idx, family := range families {
		supportsGraphics := family.Graphics && family.QueueCount > 0

		supportsPresent, err := instance.SurfaceSupport(device, idx, surface)
		if err != nil {
			return QueueFamily{}, false, markf(ErrQueueFamilyNotFound, err, "query presentation support of queue family %d", idx)
		}

		if supportsGraphics && supportsPresent {
			return QueueFamily{Graphics: idx, Presentation: idx}, true, nil
		}
		if supportsGraphics && graphics < 0 {
			graphics = idx
		}
		if supportsPresent && present < 0 {
			present = idx
		}
	}

	if graphics < 0 || present < 0 {
		return QueueFamily{}, false, nil
	}
	return QueueFamily{Graphics: graphics, Presentation: present}, true, nil
}
