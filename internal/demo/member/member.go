// Package member holds the member sample service.
package member

// MemberService greets members
type MemberService interface {
	Hello(param string) string
}

// MemberServiceImpl implements MemberService and adds a method the interface
// does not declare
type MemberServiceImpl struct{}

func (m *MemberServiceImpl) Hello(param string) string {
	return "ok"
}

func (m *MemberServiceImpl) Internal(param string) string {
	return "ok"
}
