package wizard

import (
	"ai-tryon-studio/internal/catalog"
	"ai-tryon-studio/internal/history"
)

type event interface{ isEvent() }

type selectAsset struct {
	role  Role
	asset catalog.Asset
}

type assetResolved struct {
	role Role
	data string
	seq  uint64
}

type assetFailed struct {
	role Role
	err  error
	seq  uint64
}

type uploadFailed struct {
	err error
}

type setClothPrompt struct {
	text string
}

type generateCloth struct{}

// clothGenerated fires after the generated garment has already been prepended
// to the clothing catalog.
type clothGenerated struct {
	asset catalog.Asset
	seq   uint64
}

type clothGenerateFailed struct {
	err error
	seq uint64
}

type beginTryOn struct{}

type tryOnSucceeded struct {
	person string
	cloth  string
	result string
	seq    uint64
}

type tryOnFailed struct {
	err error
	seq uint64
}

type restoreItem struct {
	item history.Item
}

type goToStep struct {
	to Step
}

type advanceFired struct {
	to Step
}

type dismissError struct{}

func (selectAsset) isEvent()         {}
func (assetResolved) isEvent()       {}
func (assetFailed) isEvent()         {}
func (uploadFailed) isEvent()        {}
func (setClothPrompt) isEvent()      {}
func (generateCloth) isEvent()       {}
func (clothGenerated) isEvent()      {}
func (clothGenerateFailed) isEvent() {}
func (beginTryOn) isEvent()          {}
func (tryOnSucceeded) isEvent()      {}
func (tryOnFailed) isEvent()         {}
func (restoreItem) isEvent()         {}
func (goToStep) isEvent()            {}
func (advanceFired) isEvent()        {}
func (dismissError) isEvent()        {}

// Effects are the side effects a transition asks the machine to carry out.
type effect interface{ isEffect() }

type resolveEffect struct {
	role  Role
	asset catalog.Asset
	seq   uint64
}

type generateClothEffect struct {
	prompt string
	seq    uint64
}

type tryOnEffect struct {
	person string
	cloth  string
	seq    uint64
}

type scheduleAdvanceEffect struct {
	to Step
}

type cancelAdvanceEffect struct{}

type appendHistoryEffect struct {
	person string
	cloth  string
	result string
}

func (resolveEffect) isEffect()         {}
func (generateClothEffect) isEffect()   {}
func (tryOnEffect) isEffect()           {}
func (scheduleAdvanceEffect) isEffect() {}
func (cancelAdvanceEffect) isEffect()   {}
func (appendHistoryEffect) isEffect()   {}
