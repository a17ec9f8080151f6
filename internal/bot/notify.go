package bot

import "ai-tryon-studio/internal/wizard"

// NotifyFunc returns the wizard change hook for one chat. Async generations
// finish long after the triggering message was answered, so their outcome is
// pushed from here.
func (h *Handler) NotifyFunc(chatID int64) func(old, new wizard.State) {
	return func(old, new wizard.State) {
		if new.ErrorMessage != "" && new.ErrorMessage != old.ErrorMessage {
			if err := h.tg.SendText(chatID, "⚠️ "+new.ErrorMessage); err != nil {
				h.logger.Error("error notification failed", "err", err)
			}
			return
		}

		if old.GeneratingCloth && !new.GeneratingCloth && new.ClothImage != "" && new.ClothImage != old.ClothImage {
			if err := h.tg.SendPhotoDataURL(chatID, new.ClothImage, "👕 Garment ready. Send /tryon to see it on the model."); err != nil {
				h.logger.Error("garment notification failed", "err", err)
			}
		}

		if old.GeneratingResult && !new.GeneratingResult && new.ResultImage != "" && new.ResultImage != old.ResultImage {
			if err := h.tg.SendPhotoDataURL(chatID, new.ResultImage, "✅ Here is your try-on! Send another garment to try more."); err != nil {
				h.logger.Error("result notification failed", "err", err)
			}
		}
	}
}
