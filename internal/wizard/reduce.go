package wizard

import "strings"

const (
	msgSelectInputsFirst = "select a model and a garment first"
	msgClothGenFailed    = "garment generation failed: "
	msgTryOnFailed       = "try-on generation failed, please retry: "
)

// reduce is the pure transition function. It never performs I/O; anything
// that must happen outside the state is returned as effects.
func reduce(s State, ev event) (State, []effect) {
	var effs []effect

	switch ev := ev.(type) {
	case selectAsset:
		s.ErrorMessage = ""
		switch ev.role {
		case RolePerson:
			s.SelectedPersonID = ev.asset.ID
			s.personSeq++
			effs = append(effs, resolveEffect{role: RolePerson, asset: ev.asset, seq: s.personSeq})
		case RoleCloth:
			s.SelectedClothID = ev.asset.ID
			s.clothSeq++
			effs = append(effs, resolveEffect{role: RoleCloth, asset: ev.asset, seq: s.clothSeq})
		}

	case assetResolved:
		switch ev.role {
		case RolePerson:
			if ev.seq != s.personSeq {
				break
			}
			s.PersonImage = ev.data
			if s.Step == StepSelectPerson {
				s.pendingAdvance = StepSelectCloth
				effs = append(effs, scheduleAdvanceEffect{to: StepSelectCloth})
			}
		case RoleCloth:
			if ev.seq != s.clothSeq {
				break
			}
			s.ClothImage = ev.data
		}

	case assetFailed:
		switch ev.role {
		case RolePerson:
			if ev.seq != s.personSeq {
				break
			}
			s.SelectedPersonID = ""
			s.ErrorMessage = ev.err.Error()
		case RoleCloth:
			if ev.seq != s.clothSeq {
				break
			}
			s.SelectedClothID = ""
			s.ErrorMessage = ev.err.Error()
		}

	case uploadFailed:
		s.ErrorMessage = ev.err.Error()

	case setClothPrompt:
		s.ClothPrompt = ev.text

	case generateCloth:
		if strings.TrimSpace(s.ClothPrompt) == "" {
			break
		}
		s.GeneratingCloth = true
		s.ErrorMessage = ""
		s.clothSeq++
		s.clothGenSeq = s.clothSeq
		effs = append(effs, generateClothEffect{prompt: s.ClothPrompt, seq: s.clothSeq})

	case clothGenerated:
		if ev.seq == s.clothGenSeq {
			s.GeneratingCloth = false
		}
		if ev.seq != s.clothSeq {
			// Superseded by a later selection; the garment stays in the
			// catalog but must not steal the selection.
			break
		}
		s.SelectedClothID = ev.asset.ID
		s.ClothImage = ev.asset.Data
		s.ClothPrompt = ""

	case clothGenerateFailed:
		if ev.seq == s.clothGenSeq {
			s.GeneratingCloth = false
		}
		if ev.seq != s.clothSeq {
			break
		}
		s.ErrorMessage = msgClothGenFailed + ev.err.Error()

	case beginTryOn:
		if s.PersonImage == "" || s.ClothImage == "" {
			s.ErrorMessage = msgSelectInputsFirst
			break
		}
		s.GeneratingResult = true
		s.Step = StepGenerateResult
		s.ErrorMessage = ""
		s.priorResult = s.ResultImage
		s.ResultImage = ""
		s.pendingAdvance = 0
		s.resultSeq++
		effs = append(effs,
			cancelAdvanceEffect{},
			tryOnEffect{person: s.PersonImage, cloth: s.ClothImage, seq: s.resultSeq},
		)

	case tryOnSucceeded:
		if ev.seq != s.resultSeq {
			break
		}
		s.GeneratingResult = false
		s.ResultImage = ev.result
		s.priorResult = ""
		effs = append(effs, appendHistoryEffect{person: ev.person, cloth: ev.cloth, result: ev.result})

	case tryOnFailed:
		if ev.seq != s.resultSeq {
			break
		}
		s.GeneratingResult = false
		s.ErrorMessage = msgTryOnFailed + ev.err.Error()
		// The result view must never present a failed attempt as a result.
		s.Step = StepSelectCloth
		s.ResultImage = s.priorResult
		s.priorResult = ""

	case restoreItem:
		s.PersonImage = ev.item.PersonImage
		s.ClothImage = ev.item.ClothImage
		s.ResultImage = ev.item.ResultImage
		s.Step = StepGenerateResult
		s.pendingAdvance = 0
		effs = append(effs, cancelAdvanceEffect{})

	case goToStep:
		// Manual navigation always wins over a scheduled advance.
		s.pendingAdvance = 0
		effs = append(effs, cancelAdvanceEffect{})
		switch ev.to {
		case StepSelectPerson:
			s.Step = StepSelectPerson
		case StepSelectCloth:
			if s.PersonImage != "" {
				s.Step = StepSelectCloth
			}
		case StepGenerateResult:
			if s.ResultImage != "" {
				s.Step = StepGenerateResult
			}
		}

	case advanceFired:
		if s.pendingAdvance == ev.to {
			s.Step = ev.to
			s.pendingAdvance = 0
		}

	case dismissError:
		s.ErrorMessage = ""
	}

	return s, effs
}
