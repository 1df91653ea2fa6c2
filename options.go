package rendercmd

// defaultCapacity is the number of commands a new queue holds before its
// storage first grows.
const defaultCapacity = 64

// QueueOption configures a Queue during creation.
//
// Example:
//
//	// A queue sized for a busy frame
//	q := rendercmd.NewQueue(rendercmd.WithCapacity(4096))
type QueueOption func(*queueOptions)

// queueOptions holds optional configuration for Queue creation.
type queueOptions struct {
	capacity int
}

// defaultOptions returns the default queue options.
func defaultOptions() queueOptions {
	return queueOptions{
		capacity: defaultCapacity,
	}
}

// WithCapacity sets how many commands the queue can hold before its
// storage grows. Execute keeps the capacity for the next frame. Negative
// values are treated as zero.
func WithCapacity(n int) QueueOption {
	return func(o *queueOptions) {
		o.capacity = max(n, 0)
	}
}
