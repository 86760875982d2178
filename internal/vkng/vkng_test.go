package vkng

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"

	"github.com/JoeGuida/renderer/internal/hal"
)

func TestResult(t *testing.T) {
	failure := errors.New("driver failure")

	cases := map[string]struct {
		res     common.VkResult
		err     error
		want    hal.Result
		wantErr bool
	}{
		"success":              {res: core1_0.VKSuccess, want: hal.Success},
		"suboptimal":           {res: khr_swapchain.VKSuboptimal, want: hal.Suboptimal},
		"out of date":          {res: khr_swapchain.VKErrorOutOfDate, err: failure, want: hal.ErrorOutOfDate},
		"timeout":              {res: core1_0.VKTimeout, want: hal.Timeout},
		"not ready":            {res: core1_0.VKNotReady, want: hal.Timeout},
		"device lost":          {res: core1_0.VKErrorDeviceLost, err: failure, want: hal.ErrorDeviceLost, wantErr: true},
		"device lost no error": {res: core1_0.VKErrorDeviceLost, want: hal.ErrorDeviceLost, wantErr: true},
		"other failure":        {res: core1_0.VKErrorOutOfHostMemory, err: failure, want: hal.ErrorUnknown, wantErr: true},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := result(c.res, c.err)
			assert.Equal(t, c.want, got)
			if c.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDebugSeverity(t *testing.T) {
	assert.Equal(t, hal.SeverityError, debugSeverity(ext_debug_utils.SeverityError))
	assert.Equal(t, hal.SeverityError, debugSeverity(ext_debug_utils.SeverityError|ext_debug_utils.SeverityWarning))
	assert.Equal(t, hal.SeverityWarning, debugSeverity(ext_debug_utils.SeverityWarning))
	assert.Equal(t, hal.SeverityInfo, debugSeverity(ext_debug_utils.SeverityInfo))
	assert.Equal(t, hal.SeverityVerbose, debugSeverity(ext_debug_utils.SeverityVerbose))
}

func TestMessageKind(t *testing.T) {
	assert.Equal(t, "validation", messageKind(ext_debug_utils.TypeValidation|ext_debug_utils.TypeGeneral))
	assert.Equal(t, "performance", messageKind(ext_debug_utils.TypePerformance))
	assert.Equal(t, "general", messageKind(ext_debug_utils.TypeGeneral))
}

func TestHandle(t *testing.T) {
	assert.Equal(t, 7, handle[int](7))
	assert.Zero(t, handle[int](nil))
	assert.Zero(t, handle[int]("not an int"))
}

func TestKeys(t *testing.T) {
	set := keys(map[string]int{"VK_KHR_surface": 1, "VK_EXT_debug_utils": 2})
	assert.Equal(t, map[string]struct{}{"VK_KHR_surface": {}, "VK_EXT_debug_utils": {}}, set)
}

func TestConversions(t *testing.T) {
	v := viewport(hal.Viewport{Width: 800, Height: 600, MaxDepth: 1})
	assert.Equal(t, float32(800), v.Width)
	assert.Equal(t, float32(1), v.MaxDepth)

	r := rect(hal.Rect2D{Offset: hal.Offset2D{X: 1, Y: 2}, Extent: hal.Extent2D{Width: 3, Height: 4}})
	assert.Equal(t, core1_0.Rect2D{Offset: core1_0.Offset2D{X: 1, Y: 2}, Extent: core1_0.Extent2D{Width: 3, Height: 4}}, r)

	assert.Equal(t, hal.Extent2D{Width: 5, Height: 6}, extent(core1_0.Extent2D{Width: 5, Height: 6}))
	assert.Empty(t, semaphores(nil))
}
