package handler

// Aliases for the external handler_test package.
type UserPart = userPart

var ToUserPart = toUserPart
