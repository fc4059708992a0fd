package domain

type ToastType string

const (
	ToastSuccess ToastType = "success"
	ToastError   ToastType = "error"
	ToastInfo    ToastType = "info"
)

// Toast is a transient, auto-dismissing status message. The type only affects
// presentation.
type Toast struct {
	Message string    `json:"message"`
	Type    ToastType `json:"type"`
}
