// Package planner computes the source crop rectangle and destination canvas
// for a resize. It performs no I/O.
package planner

import (
	"github.com/prcd/imageprocessor/pkg/imgerr"
	"github.com/prcd/imageprocessor/pkg/types"
)

// Plan returns the resample plan for mapping source onto target with target.Method
func Plan(source types.ImageSpec, target types.TargetSpec) (types.ResamplePlan, error) {
	if source.Width <= 0 || source.Height <= 0 {
		return types.ResamplePlan{}, imgerr.Validation("source", [2]int{source.Width, source.Height}, "dimensions must be positive")
	}
	if target.Width <= 0 || target.Height <= 0 {
		return types.ResamplePlan{}, imgerr.Validation("target", [2]int{target.Width, target.Height}, "dimensions must be positive")
	}

	switch target.Method {
	case types.Fill:
		return planFill(source, target), nil
	case types.Fit, "":
		return planFit(source, target), nil
	}
	return types.ResamplePlan{}, imgerr.InvalidMethod(target.Method)
}

// compareRatio compares target.Width/target.Height with source.Width/source.Height
// using cross multiplication, returning -1, 0 or 1.
func compareRatio(source types.ImageSpec, target types.TargetSpec) int {
	t := int64(target.Width) * int64(source.Height)
	s := int64(source.Width) * int64(target.Height)
	switch {
	case t < s:
		return -1
	case t > s:
		return 1
	}
	return 0
}

// planFill crops the source to the target ratio around its center. The crop
// is computed in source pixels, floored, and the canvas is always the target box.
func planFill(source types.ImageSpec, target types.TargetSpec) types.ResamplePlan {
	crop := source.Bounds()

	switch compareRatio(source, target) {
	case -1:
		// source is wider than the target ratio: trim the sides
		crop.Width = atLeastOne(mulDiv(target.Width, source.Height, target.Height))
		crop.X = (source.Width - crop.Width) / 2
	case 1:
		// source is taller than the target ratio: trim top and bottom
		crop.Height = atLeastOne(mulDiv(target.Height, source.Width, target.Width))
		crop.Y = (source.Height - crop.Height) / 2
	}

	return types.ResamplePlan{
		Crop:   crop,
		Width:  target.Width,
		Height: target.Height,
	}
}

// planFit scales the whole source down into the target box. Sources that
// already fit are passed through at their own size.
func planFit(source types.ImageSpec, target types.TargetSpec) types.ResamplePlan {
	plan := types.ResamplePlan{
		Crop:   source.Bounds(),
		Width:  source.Width,
		Height: source.Height,
	}

	if source.Width <= target.Width && source.Height <= target.Height {
		return plan
	}

	switch compareRatio(source, target) {
	case -1:
		plan.Width = target.Width
		plan.Height = clamp(mulDivRound(target.Width, source.Height, source.Width), 1, target.Height)
	case 1:
		plan.Height = target.Height
		plan.Width = clamp(mulDivRound(target.Height, source.Width, source.Height), 1, target.Width)
	default:
		plan.Width = target.Width
		plan.Height = target.Height
	}
	return plan
}

// mulDiv returns floor(a*b/c) for positive operands
func mulDiv(a, b, c int) int {
	return int(int64(a) * int64(b) / int64(c))
}

// mulDivRound returns a*b/c rounded half up for positive operands
func mulDivRound(a, b, c int) int {
	return int((2*int64(a)*int64(b) + int64(c)) / (2 * int64(c)))
}

func atLeastOne(v int) int {
	if v < 1 {
		return 1
	}
	return v
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
