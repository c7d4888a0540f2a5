package script

import (
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// goErrorType names the metatable of userdata carrying a Go error through
// Lua frames.
const goErrorType = "brigadier.error"

// Error is a failure raised by Lua code, such as a call to error or a
// runtime type error.
type Error struct {
	Message   string
	Traceback string
}

func (e *Error) Error() string {
	return e.Message
}

// IsScriptError checks if an error is an Error.
func IsScriptError(err error) bool {
	var se *Error
	return errors.As(err, &se)
}

// registerErrorType installs the metatable used by raise.
func registerErrorType(L *lua.LState) {
	mt := L.NewTypeMetatable(goErrorType)
	L.SetField(mt, "__tostring", L.NewFunction(func(L *lua.LState) int {
		ud := L.CheckUserData(1)
		if err, ok := ud.Value.(error); ok {
			L.Push(lua.LString(err.Error()))
		} else {
			L.Push(lua.LString(fmt.Sprint(ud.Value)))
		}
		return 1
	}))
}

// raise aborts the running Lua call with err. The error value is kept intact
// so fromLua can recover it once the call unwinds back to Go.
func raise(L *lua.LState, err error) int {
	ud := L.NewUserData()
	ud.Value = err
	L.SetMetatable(ud, L.GetTypeMetatable(goErrorType))
	L.Error(ud, 0)
	return 0
}

// fromLua converts an error returned by a protected call into the Go error
// that was raised, or an Error for failures originating in Lua.
func fromLua(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *lua.ApiError
	if !errors.As(err, &apiErr) {
		return err
	}
	if ud, ok := apiErr.Object.(*lua.LUserData); ok {
		if goErr, ok := ud.Value.(error); ok {
			return goErr
		}
	}
	if apiErr.Cause != nil {
		return apiErr.Cause
	}
	msg := ""
	if apiErr.Object != nil {
		msg = apiErr.Object.String()
	}
	return &Error{Message: msg, Traceback: apiErr.StackTrace}
}
