package messages

// CommonBanned: 공통 안내 메시지 키
const (
	CommonBanned      = "common.banned"
	CommonBusy        = "common.busy"
	CommonError       = "common.error"
	CommonDefaultName = "common.default_name"
)

// StartHelloNew: 시작/온보딩 화면 메시지 키
const (
	StartHelloNew      = "start.hello_new"
	StartHello         = "start.hello"
	StartSubs          = "start.subs"
	StartNotSubscribed = "start.not_subscribed"
	StartRewardPrefix  = "start.reward_prefix"
)

const (
	MenuHome     = "menu.home"
	MenuRefsStub = "menu.refs_stub"
)

// TasksNone: 과제 스폰서 화면 메시지 키
const (
	TasksNone          = "tasks.none"
	TasksList          = "tasks.list"
	TasksNotSubscribed = "tasks.not_subscribed"
	TasksGranted       = "tasks.granted"
	TasksAllDone       = "tasks.all_done"
	TasksInactive      = "tasks.inactive"
)

// GameNoAttempts: 게임 화면 메시지 키
const (
	GameNoAttempts    = "game.no_attempts"
	GameBoard         = "game.board"
	GameWin           = "game.win"
	GameBurned        = "game.burned"
	GameCollected     = "game.collected"
	GameFinished      = "game.finished"
	GameNothingToTake = "game.nothing_to_take"
)

// BuyInvoiceTitle: Stars 결제 메시지 키
const (
	BuyInvoiceTitle       = "buy.invoice_title"
	BuyInvoiceDescription = "buy.invoice_description"
	BuyInvoiceLabel       = "buy.invoice_label"
	BuyPaymentOK          = "buy.payment_ok"
	BuyPaymentDuplicate   = "buy.payment_duplicate"
)

// ProfileHome: 프로필/인벤토리 메시지 키
const (
	ProfileHome           = "profile.home"
	ProfileInventoryEmpty = "profile.inventory_empty"
	ProfileInventory      = "profile.inventory"
	ProfileInventoryItem  = "profile.inventory_item"
	ProfileItem           = "profile.item"
	ProfileItemNotFound   = "profile.item_not_found"
	ProfileCannotWithdraw = "profile.cannot_withdraw"
	ProfileConfirm        = "profile.confirm_withdraw"
	ProfileWithdrawSent   = "profile.withdraw_sent"
	ProfileStatusPrefix   = "profile.status."
)

const (
	AdminWithdrawRequest = "admin.withdraw_request"
	AdminWithdrawDone    = "admin.withdraw_done"
	AdminWithdrawnNotice = "admin.withdrawn_notice"
)

// ReminderStagePrefix: 리마인더 메시지 키. 단계별 문구가 없으면 ReminderDefault 를 쓴다.
const (
	ReminderStagePrefix = "reminder.stage_"
	ReminderDefault     = "reminder.default"
)

// ButtonChooseGift: 인라인 버튼 라벨 키
const (
	ButtonChooseGift          = "buttons.choose_gift"
	ButtonPlay                = "buttons.play"
	ButtonTasks               = "buttons.tasks"
	ButtonBuy                 = "buttons.buy"
	ButtonRefs                = "buttons.refs"
	ButtonProfile             = "buttons.profile"
	ButtonMenu                = "buttons.menu"
	ButtonBack                = "buttons.back"
	ButtonSubscribed          = "buttons.subscribed"
	ButtonCheckSubs           = "buttons.check_subs"
	ButtonCheckTasks          = "buttons.check_tasks"
	ButtonSponsor             = "buttons.sponsor"
	ButtonSponsorDefaultTitle = "buttons.sponsor_default_title"
	ButtonTake                = "buttons.take"
	ButtonInventory           = "buttons.inventory"
	ButtonSupport             = "buttons.support"
	ButtonProfileBack         = "buttons.profile_back"
	ButtonWithdraw            = "buttons.withdraw"
	ButtonConfirmWithdraw     = "buttons.confirm_withdraw"
	ButtonCancel              = "buttons.cancel"
	ButtonClose               = "buttons.close"
	ButtonWithdrawn           = "buttons.withdrawn"
)
