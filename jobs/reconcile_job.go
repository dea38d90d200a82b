package jobs

import (
	"context"
	"log"
	"time"

	"github.com/URAYUSHJAIN/skillforge/services"
)

// ReconcileStaleBookings returns the cron entry that sweeps pending bookings
// whose checkout session was never confirmed through the webhook or the
// success-page poll.
func ReconcileStaleBookings(svc *services.BookingService) func() {
	return func() {
		log.Println("Running job: ReconcileStaleBookings...")

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		confirmed, failed, err := svc.ReconcileStalePending(ctx)
		if err != nil {
			log.Printf("🔥 Reconcile job failed: %v", err)
			return
		}
		if confirmed > 0 || failed > 0 {
			log.Printf("✅ Reconcile job done: %d confirmed, %d marked failed", confirmed, failed)
		}
	}
}
