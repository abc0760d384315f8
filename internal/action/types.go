package action

// Type tags and interface seals for every catalog entry. Kept in one place
// so a missing entry is caught at a glance when the catalog grows.

func (ChangeLocation) Type() Type   { return TypeChangeLocation }
func (ChangeLocation) isAction()    {}
func (SelectScreen) Type() Type     { return TypeSelectScreen }
func (SelectScreen) isAction()      {}
func (SelectScreenFail) Type() Type { return TypeSelectScreenFail }
func (SelectScreenFail) isAction()  {}
func (SelectView) Type() Type       { return TypeSelectView }
func (SelectView) isAction()        {}
func (SelectViewFail) Type() Type   { return TypeSelectViewFail }
func (SelectViewFail) isAction()    {}
func (DrillDown) Type() Type        { return TypeDrillDown }
func (DrillDown) isAction()         {}

func (Login) Type() Type      { return TypeLogin }
func (Login) isAction()       {}
func (LoginDone) Type() Type  { return TypeLoginDone }
func (LoginDone) isAction()   {}
func (LoginFail) Type() Type  { return TypeLoginFail }
func (LoginFail) isAction()   {}
func (SwitchRole) Type() Type { return TypeSwitchRole }
func (SwitchRole) isAction()  {}
func (Logout) Type() Type     { return TypeLogout }
func (Logout) isAction()      {}
func (LogoutDone) Type() Type { return TypeLogoutDone }
func (LogoutDone) isAction()  {}

func (BCFetchDataRequest) Type() Type    { return TypeBCFetchDataRequest }
func (BCFetchDataRequest) isAction()     {}
func (BCFetchDataPages) Type() Type      { return TypeBCFetchDataPages }
func (BCFetchDataPages) isAction()       {}
func (BCForceUpdate) Type() Type         { return TypeBCForceUpdate }
func (BCForceUpdate) isAction()          {}
func (BCChangePage) Type() Type          { return TypeBCChangePage }
func (BCChangePage) isAction()           {}
func (BCSelectRecord) Type() Type        { return TypeBCSelectRecord }
func (BCSelectRecord) isAction()         {}
func (BCChangeCursors) Type() Type       { return TypeBCChangeCursors }
func (BCChangeCursors) isAction()        {}
func (BCFetchDataSuccess) Type() Type    { return TypeBCFetchDataSuccess }
func (BCFetchDataSuccess) isAction()     {}
func (BCFetchDataFail) Type() Type       { return TypeBCFetchDataFail }
func (BCFetchDataFail) isAction()        {}
func (BCFetchRowMeta) Type() Type        { return TypeBCFetchRowMeta }
func (BCFetchRowMeta) isAction()         {}
func (BCFetchRowMetaSuccess) Type() Type { return TypeBCFetchRowMetaSuccess }
func (BCFetchRowMetaSuccess) isAction()  {}
func (BCFetchRowMetaFail) Type() Type    { return TypeBCFetchRowMetaFail }
func (BCFetchRowMetaFail) isAction()     {}

func (ShowViewPopup) Type() Type { return TypeShowViewPopup }
func (ShowViewPopup) isAction()  {}
func (ClosePopup) Type() Type    { return TypeClosePopup }
func (ClosePopup) isAction()     {}

func (ChangeDataItem) Type() Type      { return TypeChangeDataItem }
func (ChangeDataItem) isAction()       {}
func (ChangeDataItems) Type() Type     { return TypeChangeDataItems }
func (ChangeDataItems) isAction()      {}
func (RemoveMultivalueTag) Type() Type { return TypeRemoveMultivalueTag }
func (RemoveMultivalueTag) isAction()  {}
func (ProcessPostInvoke) Type() Type   { return TypeProcessPostInvoke }
func (ProcessPostInvoke) isAction()    {}

func (APIError) Type() Type          { return TypeAPIError }
func (APIError) isAction()           {}
func (HTTPError) Type() Type         { return TypeHTTPError }
func (HTTPError) isAction()          {}
func (ShowViewError) Type() Type     { return TypeShowViewError }
func (ShowViewError) isAction()      {}
func (AddNotification) Type() Type   { return TypeAddNotification }
func (AddNotification) isAction()    {}
func (CloseNotification) Type() Type { return TypeCloseNotification }
func (CloseNotification) isAction()  {}
