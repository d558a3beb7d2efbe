package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrop_TallerTargetCropsWidthAroundFocalCenter(t *testing.T) {
	t.Parallel()

	crop, resize := Crop(1000, 1000, 500, 1000, Center)

	require.NotNil(t, crop)
	assert.Equal(t, Rect{Width: 500, Height: 1000, X: 250, Y: 0}, *crop)
	assert.Nil(t, resize, "crop already matches the target, no resize expected")
}

func TestCrop_WiderTargetCropsHeightAroundFocal(t *testing.T) {
	t.Parallel()

	// 1000x1000 -> 1000x500: trim 500 rows, focal 25% from the top keeps
	// three quarters of the removed rows below the window.
	crop, resize := Crop(1000, 1000, 1000, 500, Focal{X: 50, Y: 25})

	require.NotNil(t, crop)
	assert.Equal(t, Rect{Width: 1000, Height: 500, X: 0, Y: 125}, *crop)
	assert.Nil(t, resize)
}

func TestCrop_EqualRatiosProducesNoCrop(t *testing.T) {
	t.Parallel()

	crop, resize := Crop(2000, 1000, 1000, 500, Center)

	assert.Nil(t, crop)
	require.NotNil(t, resize)
	assert.Equal(t, Size{Width: 1000, Height: 500}, *resize)
}

func TestCrop_NoWorkWhenAlreadyAtTarget(t *testing.T) {
	t.Parallel()

	crop, resize := Crop(800, 600, 800, 600, Center)

	assert.Nil(t, crop)
	assert.Nil(t, resize)
}

func TestCrop_CropAndResizeCombined(t *testing.T) {
	t.Parallel()

	// Source is 4:3, target is 2:1 and smaller: expect a height trim
	// followed by a resize down to the target.
	crop, resize := Crop(1600, 1200, 800, 400, Focal{X: 50, Y: 0})

	require.NotNil(t, crop)
	assert.Equal(t, Rect{Width: 1600, Height: 800, X: 0, Y: 0}, *crop)
	require.NotNil(t, resize)
	assert.Equal(t, Size{Width: 800, Height: 400}, *resize)
}

func TestCrop_RoundsToNearestPixel(t *testing.T) {
	t.Parallel()

	// target ratio 0.7003... on a square source: crop width 1000*0.7003 = 700.3
	crop, _ := Crop(1000, 1000, 707, 1009, Center)

	require.NotNil(t, crop)
	assert.Equal(t, 701, crop.Width)
}

func TestWindow_PositionsFixedWindowAtFocal(t *testing.T) {
	t.Parallel()

	r := Window(1000, 600, 448, 250, Focal{X: 25, Y: 100})

	assert.Equal(t, Rect{Width: 448, Height: 250, X: 138, Y: 350}, r)
}

func TestScale(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 600, Scale(400, 1.5))
	assert.Equal(t, 891, Scale(594, 1.5))
	assert.Equal(t, 1020, Scale(680, 1.5))
}
