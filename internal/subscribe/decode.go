package subscribe

import (
	"fmt"

	"github.com/yndnr/zpipe/internal/core/domain"
)

// Decode turns a received multipart message into a Message. Anything
// other than exactly two frames is rejected with domain.ErrFrameCount.
func Decode(frames [][]byte, seq uint64) (domain.Message, error) {
	if len(frames) != 2 {
		return domain.Message{}, domain.ErrFrameCount.WithDetails(
			fmt.Sprintf("got %d frames, want 2", len(frames)))
	}
	return domain.NewMessage(frames[0], frames[1], seq), nil
}
