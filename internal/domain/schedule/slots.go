package schedule

import "hivcare-booking/pkg/apperror"

// DefaultInterval is the slot step in minutes when none is configured.
const DefaultInterval = 30

// GenerateSlots lists the candidate start times between start and end
// (both inclusive) stepping by interval minutes. A start after end yields an
// empty sequence.
func GenerateSlots(start, end string, interval int) ([]string, error) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	startMin, err := ParseClock(start)
	if err != nil {
		return nil, apperror.ValidationField("start_time", err.Error())
	}
	endMin, err := ParseClock(end)
	if err != nil {
		return nil, apperror.ValidationField("end_time", err.Error())
	}

	if startMin > endMin {
		return []string{}, nil
	}

	slots := make([]string, 0, (endMin-startMin)/interval+1)
	for m := startMin; m <= endMin; m += interval {
		slots = append(slots, FormatClock(m))
	}
	return slots, nil
}

// Contains reports whether clock is one of the generated slots.
func Contains(slots []string, clock string) bool {
	for _, s := range slots {
		if s == clock {
			return true
		}
	}
	return false
}
