//go:build windows

package infra

import (
	"fmt"
	"strings"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/eliteGoblin/focusd/tray_mon/internal/domain"
)

var (
	user32dll               = windows.NewLazySystemDLL("user32.dll")
	pEnumWindows            = user32dll.NewProc("EnumWindows")
	pGetClassNameW          = user32dll.NewProc("GetClassNameW")
	pGetWindowTextLengthW   = user32dll.NewProc("GetWindowTextLengthW")
	pGetWindowTextW         = user32dll.NewProc("GetWindowTextW")
	pFindWindowW            = user32dll.NewProc("FindWindowW")
	pFindWindowExW          = user32dll.NewProc("FindWindowExW")
	pRegisterWindowMessageW = user32dll.NewProc("RegisterWindowMessageW")
	pSendMessageTimeoutW    = user32dll.NewProc("SendMessageTimeoutW")
	pInvalidateRect         = user32dll.NewProc("InvalidateRect")
	pUpdateWindow           = user32dll.NewProc("UpdateWindow")
)

const (
	hwndBroadcast     = 0xFFFF
	wmSettingChange   = 0x001A
	smtoAbortIfHung   = 0x0002
	sendTimeoutMillis = 1000
	classNameMax      = 256

	trayWindowClass    = "Shell_TrayWnd"
	trayNotifyClass    = "TrayNotifyWnd"
	trayOverflowClass  = "NotifyIconOverflowWindow"
	taskbarCreatedName = "TaskbarCreated"
)

// EnumWindows needs a C callback; one is created for the process lifetime
// and collects into enumResult under enumMu.
var (
	enumMu       sync.Mutex
	enumResult   []domain.Window
	enumCallback = windows.NewCallback(enumWindowsProc)

	taskbarCreatedOnce sync.Once
	taskbarCreatedMsg  uintptr
)

func enumWindowsProc(hwnd uintptr, _ uintptr) uintptr {
	enumResult = append(enumResult, domain.Window{
		Handle: hwnd,
		Title:  windowText(hwnd),
		Class:  className(hwnd),
	})
	return 1 // continue enumeration
}

func className(hwnd uintptr) string {
	buf := make([]uint16, classNameMax)
	n, _, _ := pGetClassNameW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), classNameMax)
	if n == 0 {
		return ""
	}
	return windows.UTF16ToString(buf[:n])
}

func windowText(hwnd uintptr) string {
	length, _, _ := pGetWindowTextLengthW.Call(hwnd)
	if length == 0 {
		return ""
	}
	buf := make([]uint16, length+1)
	n, _, _ := pGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), length+1)
	return windows.UTF16ToString(buf[:n])
}

// ShellImpl implements domain.Shell with user32 calls.
type ShellImpl struct{}

// NewShell creates the Win32 shell adapter.
func NewShell() domain.Shell {
	return &ShellImpl{}
}

// EnumerateWindows walks all top-level windows.
func (s *ShellImpl) EnumerateWindows() ([]domain.Window, error) {
	enumMu.Lock()
	defer enumMu.Unlock()

	enumResult = nil
	ret, _, err := pEnumWindows.Call(enumCallback, 0)
	if ret == 0 {
		return nil, fmt.Errorf("EnumWindows failed: %w", err)
	}

	windowsFound := enumResult
	enumResult = nil
	return windowsFound, nil
}

// FindWindowsByClass returns top-level windows with one of the given classes.
func (s *ShellImpl) FindWindowsByClass(classes ...string) ([]domain.Window, error) {
	if len(classes) == 0 {
		return nil, nil
	}
	all, err := s.EnumerateWindows()
	if err != nil {
		return nil, err
	}

	var found []domain.Window
	for _, w := range all {
		for _, c := range classes {
			if strings.EqualFold(w.Class, c) {
				found = append(found, w)
				break
			}
		}
	}
	return found, nil
}

func taskbarCreated() (uintptr, error) {
	taskbarCreatedOnce.Do(func() {
		name, err := windows.UTF16PtrFromString(taskbarCreatedName)
		if err != nil {
			return
		}
		taskbarCreatedMsg, _, _ = pRegisterWindowMessageW.Call(uintptr(unsafe.Pointer(name)))
	})
	if taskbarCreatedMsg == 0 {
		return 0, fmt.Errorf("RegisterWindowMessage(%s) failed", taskbarCreatedName)
	}
	return taskbarCreatedMsg, nil
}

func sendTimeout(hwnd, msg, wParam, lParam uintptr) bool {
	var result uintptr
	ret, _, _ := pSendMessageTimeoutW.Call(hwnd, msg, wParam, lParam,
		smtoAbortIfHung, sendTimeoutMillis, uintptr(unsafe.Pointer(&result)))
	return ret != 0
}

// SendTaskbarCreated sends TaskbarCreated to each window; hung windows are skipped.
func (s *ShellImpl) SendTaskbarCreated(targets []domain.Window) (int, error) {
	msg, err := taskbarCreated()
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, w := range targets {
		if sendTimeout(w.Handle, msg, 0, 0) {
			delivered++
		}
	}
	return delivered, nil
}

// BroadcastTaskbarCreated sends TaskbarCreated to every top-level window.
func (s *ShellImpl) BroadcastTaskbarCreated() error {
	msg, err := taskbarCreated()
	if err != nil {
		return err
	}
	if !sendTimeout(hwndBroadcast, msg, 0, 0) {
		return fmt.Errorf("broadcast of %s timed out", taskbarCreatedName)
	}
	return nil
}

// BroadcastSettingChange sends WM_SETTINGCHANGE naming the changed area.
func (s *ShellImpl) BroadcastSettingChange(area string) error {
	p, err := windows.UTF16PtrFromString(area)
	if err != nil {
		return err
	}
	if !sendTimeout(hwndBroadcast, wmSettingChange, 0, uintptr(unsafe.Pointer(p))) {
		return fmt.Errorf("broadcast of WM_SETTINGCHANGE(%s) timed out", area)
	}
	return nil
}

func findWindow(class string) uintptr {
	p, err := windows.UTF16PtrFromString(class)
	if err != nil {
		return 0
	}
	hwnd, _, _ := pFindWindowW.Call(uintptr(unsafe.Pointer(p)), 0)
	return hwnd
}

func findChildWindow(parent uintptr, class string) uintptr {
	p, err := windows.UTF16PtrFromString(class)
	if err != nil {
		return 0
	}
	hwnd, _, _ := pFindWindowExW.Call(parent, 0, uintptr(unsafe.Pointer(p)), 0)
	return hwnd
}

func redraw(hwnd uintptr) {
	pInvalidateRect.Call(hwnd, 0, 1)
	pUpdateWindow.Call(hwnd)
}

// RedrawTray repaints the notification area, its overflow flyout, or the
// replacement's tray windows when replacementClasses is non-empty.
func (s *ShellImpl) RedrawTray(replacementClasses []string) (int, error) {
	if len(replacementClasses) > 0 {
		found, err := s.FindWindowsByClass(replacementClasses...)
		if err != nil {
			return 0, err
		}
		for _, w := range found {
			redraw(w.Handle)
		}
		return len(found), nil
	}

	tray := findWindow(trayWindowClass)
	if tray == 0 {
		return 0, fmt.Errorf("could not find %s", trayWindowClass)
	}
	notify := findChildWindow(tray, trayNotifyClass)
	if notify == 0 {
		return 0, fmt.Errorf("could not find %s", trayNotifyClass)
	}

	redraw(notify)
	count := 1
	if overflow := findWindow(trayOverflowClass); overflow != 0 {
		redraw(overflow)
		count++
	}
	return count, nil
}

// Ensure ShellImpl implements domain.Shell.
var _ domain.Shell = (*ShellImpl)(nil)
