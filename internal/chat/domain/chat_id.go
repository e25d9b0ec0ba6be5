package domain

import (
	"strings"
)

const chatIDPrefix = "ride"

// ChatID identifies the conversation between a ride's driver and one
// passenger. Its text form is ride_<rideId>_<passengerId>_<driverId>.
type ChatID struct {
	RideID      string
	PassengerID string
	DriverID    string
}

func BuildChatID(rideID, passengerID, driverID string) (string, error) {
	id := ChatID{RideID: rideID, PassengerID: passengerID, DriverID: driverID}
	if !id.valid() {
		return "", ErrInvalidChatID
	}
	return id.String(), nil
}

func ParseChatID(s string) (ChatID, error) {
	parts := strings.Split(s, "_")
	if len(parts) != 4 || parts[0] != chatIDPrefix {
		return ChatID{}, ErrInvalidChatID
	}
	id := ChatID{RideID: parts[1], PassengerID: parts[2], DriverID: parts[3]}
	if !id.valid() {
		return ChatID{}, ErrInvalidChatID
	}
	return id, nil
}

func (c ChatID) String() string {
	return strings.Join([]string{chatIDPrefix, c.RideID, c.PassengerID, c.DriverID}, "_")
}

func (c ChatID) valid() bool {
	for _, part := range []string{c.RideID, c.PassengerID, c.DriverID} {
		if part == "" || strings.Contains(part, "_") {
			return false
		}
	}
	return c.PassengerID != c.DriverID
}

func (c ChatID) Participant(userID string) bool {
	return userID != "" && (userID == c.PassengerID || userID == c.DriverID)
}

// Peer returns the other participant.
func (c ChatID) Peer(userID string) (string, bool) {
	switch userID {
	case c.PassengerID:
		return c.DriverID, true
	case c.DriverID:
		return c.PassengerID, true
	}
	return "", false
}
