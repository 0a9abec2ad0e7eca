package storefront

// State is either Guest or Authenticated.
type State interface {
	isState()
}

type Guest struct{}

type Authenticated struct {
	UserID uint
	Token  string
}

func (Guest) isState()         {}
func (Authenticated) isState() {}

func (Guest) String() string { return "guest" }
