package model

// UI 화면 태그. ui_states.screen 에 저장된다.
const (
	ScreenStartHello      = "start:hello"
	ScreenStartHelloNew   = "start:hello_new"
	ScreenStartSubs       = "start:subs"
	ScreenMenuHome        = "menu:home"
	ScreenRefsStub        = "refs:stub"
	ScreenTasksList       = "tasks:list"
	ScreenTasksNone       = "tasks:none"
	ScreenTasksDone       = "tasks:done"
	ScreenGamePlay        = "game:play"
	ScreenGameNoAttempts  = "game:no_attempts"
	ScreenProfileHome     = "profile:home"
	ScreenProfileInv      = "profile:inventory"
	ScreenProfileInvEmpty = "profile:inventory_empty"
	ScreenProfileItem     = "profile:item"
	ScreenProfileConfirm  = "profile:confirm_withdraw"
	ScreenBlocked         = "blocked"
)
