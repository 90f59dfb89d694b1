package notify

import (
	"sync"

	"github.com/goliatone/go-masker"
	"github.com/goliatone/go-rooms/pkg/types"
)

// SanitizerConfig controls the masker used for notification sanitization.
type SanitizerConfig struct {
	Masker *masker.Masker
}

var defaultMaskerOnce sync.Once

// DefaultMasker returns a configured masker instance with the default denylist.
func DefaultMasker() *masker.Masker {
	defaultMaskerOnce.Do(func() {
		if masker.Default == nil {
			return
		}
		registerDefaultMaskFields(masker.Default)
	})
	return masker.Default
}

// SanitizeNotification masks sensitive values in the notification data payload.
func SanitizeNotification(mask *masker.Masker, notification types.Notification) types.Notification {
	if len(notification.Data) == 0 {
		return notification
	}
	if mask == nil {
		mask = DefaultMasker()
	}
	if mask == nil {
		notification.Data = map[string]any{}
		return notification
	}

	cloned := cloneStringMap(notification.Data)
	masked, err := mask.Mask(cloned)
	if err != nil {
		notification.Data = map[string]any{}
		return notification
	}

	switch masked := masked.(type) {
	case map[string]any:
		notification.Data = masked
	default:
		notification.Data = map[string]any{}
	}
	return notification
}

func registerDefaultMaskFields(mask *masker.Masker) {
	if mask == nil {
		return
	}
	mask.RegisterMaskField("Email", "filled4")
	mask.RegisterMaskField("email", "filled4")
	mask.RegisterMaskField("Secret", "filled4")
	mask.RegisterMaskField("secret", "filled4")
}

func cloneStringMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return map[string]any{}
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
